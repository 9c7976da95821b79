package core

// CategoryReport holds income/expense sums for a single category within a
// reporting period. CategoryID is nil for uncategorized transactions.
type CategoryReport struct {
	CategoryID   *int64
	CategoryName string
	Income       Money
	Expense      Money
}

// Net returns income minus expense for the category.
func (c CategoryReport) Net() Money {
	return Money{Cents: c.Income.Cents - c.Expense.Cents}
}

// MonthlyReport is the aggregation result for one user, year and month.
type MonthlyReport struct {
	Year         int
	Month        int // 1-12
	TotalIncome  Money
	TotalExpense Money
	ByCategory   []CategoryReport
}

// Net returns total income minus total expense for the month.
func (r MonthlyReport) Net() Money {
	return Money{Cents: r.TotalIncome.Cents - r.TotalExpense.Cents}
}
