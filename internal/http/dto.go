package http

import (
	"strings"
	"time"

	"moneta/internal/core"
)

// amountField accepts a monetary amount as either a JSON string ("12.34") or
// a bare number (12.34) and stores it as cents.
type amountField struct {
	cents int64
	set   bool
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	a.cents = cents
	a.set = true
	return nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type categoryRequest struct {
	Name   string       `json:"name"`
	Budget *amountField `json:"budget"`
}

type transactionRequest struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      amountField `json:"amount"`
	Type        string      `json:"type"`
	CategoryID  *int64      `json:"category_id"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type categoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Budget    *string   `json:"budget,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type categoryReportRow struct {
	CategoryID *int64 `json:"category_id"`
	Category   string `json:"category"`
	Income     string `json:"income"`
	Expense    string `json:"expense"`
	Net        string `json:"net"`
}

type reportResponse struct {
	Year         int                 `json:"year"`
	Month        int                 `json:"month"`
	TotalIncome  string              `json:"total_income"`
	TotalExpense string              `json:"total_expense"`
	Net          string              `json:"net"`
	ByCategory   []categoryReportRow `json:"by_category"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toCategoryResponse(c core.Category) categoryResponse {
	resp := categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	if c.Budget != nil {
		budget := c.Budget.Decimal()
		resp.Budget = &budget
	}
	return resp
}

func toCategoryResponses(cats []core.Category) []categoryResponse {
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = toCategoryResponse(c)
	}
	return out
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Description: tx.Description,
		Amount:      tx.Amount.Decimal(),
		Type:        string(tx.Type),
		CategoryID:  tx.CategoryID,
		Category:    tx.CategoryName,
		CreatedAt:   tx.CreatedAt,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	return out
}

func toReportResponse(report core.MonthlyReport) reportResponse {
	rows := make([]categoryReportRow, len(report.ByCategory))
	for i, row := range report.ByCategory {
		rows[i] = categoryReportRow{
			CategoryID: row.CategoryID,
			Category:   row.CategoryName,
			Income:     row.Income.Decimal(),
			Expense:    row.Expense.Decimal(),
			Net:        row.Net().Decimal(),
		}
	}
	return reportResponse{
		Year:         report.Year,
		Month:        report.Month,
		TotalIncome:  report.TotalIncome.Decimal(),
		TotalExpense: report.TotalExpense.Decimal(),
		Net:          report.Net().Decimal(),
		ByCategory:   rows,
	}
}
