package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"moneta/internal/core"
)

// MonthlyReport aggregates the user's transactions for one calendar month:
// income and expense sums per category plus overall totals. A month without
// transactions yields zero totals and an empty category list.
func (r *Repository) MonthlyReport(ctx context.Context, userID int64, year, month int) (core.MonthlyReport, error) {
	report := core.MonthlyReport{Year: year, Month: month}

	// [first of month, first of next month); time.Date normalizes month 13.
	from := core.NewDate(year, month, 1)
	to := core.NewDate(year, month+1, 1)

	rows, err := r.db.QueryContext(ctx,
		`SELECT t.category_id, c.name, t.type, SUM(t.amount_cents)
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = $1 AND t.date >= $2 AND t.date < $3
		 GROUP BY t.category_id, c.name, t.type`,
		userID, from.String(), to.String())
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("monthly report query: %w", err)
	}
	defer rows.Close()

	// Uncategorized rows group under key 0: real ids start at 1.
	index := make(map[int64]int)

	for rows.Next() {
		var categoryID sql.NullInt64
		var categoryName sql.NullString
		var txType string
		var total int64
		if err := rows.Scan(&categoryID, &categoryName, &txType, &total); err != nil {
			return core.MonthlyReport{}, fmt.Errorf("scan report row: %w", err)
		}

		key := int64(0)
		if categoryID.Valid {
			key = categoryID.Int64
		}
		i, ok := index[key]
		if !ok {
			entry := core.CategoryReport{CategoryName: categoryName.String}
			if categoryID.Valid {
				id := categoryID.Int64
				entry.CategoryID = &id
			}
			report.ByCategory = append(report.ByCategory, entry)
			i = len(report.ByCategory) - 1
			index[key] = i
		}

		switch core.TransactionType(txType) {
		case core.Income:
			report.ByCategory[i].Income.Cents += total
			report.TotalIncome.Cents += total
		case core.Expense:
			report.ByCategory[i].Expense.Cents += total
			report.TotalExpense.Cents += total
		}
	}
	if err := rows.Err(); err != nil {
		return core.MonthlyReport{}, fmt.Errorf("monthly report rows: %w", err)
	}

	// Stable output: categories by name, uncategorized last.
	sort.Slice(report.ByCategory, func(i, j int) bool {
		a, b := report.ByCategory[i], report.ByCategory[j]
		if (a.CategoryID == nil) != (b.CategoryID == nil) {
			return b.CategoryID == nil
		}
		return a.CategoryName < b.CategoryName
	})

	return report, nil
}
