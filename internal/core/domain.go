package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	MaxDescriptionLen  = 200
	MaxCategoryNameLen = 100
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Budget    *Money // optional monthly budget
		CreatedAt time.Time
	}

	Transaction struct {
		ID           int64
		UserID       int64
		CategoryID   *int64
		CategoryName string // populated on reads, empty when uncategorized
		Date         Date
		Description  string
		Amount       Money
		Type         TransactionType
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("type must be 'expense' or 'income'")
	ErrEmptyDescription = errors.New("empty description")
	ErrLongDescription  = errors.New("description too long")
	ErrEmptyName        = errors.New("empty category name")
	ErrLongName         = errors.New("category name too long")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrShortPassword    = errors.New("password must be at least 8 characters")
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

// NewDate creates a Date normalized to midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateEmail performs a minimal shape check. The database enforces
// uniqueness; anything stricter belongs to an out-of-band verification flow.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 255 {
		return ErrInvalidEmail
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum password length for registration.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrShortPassword
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxCategoryNameLen {
		return ErrLongName
	}
	if c.Budget != nil {
		if err := c.Budget.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > MaxDescriptionLen {
		return ErrLongDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
