package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2025-03-09" {
		t.Fatalf("unexpected formatting: %s", d)
	}
	if _, err := ParseDate("09/03/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"a@b.com", true},
		{"user+tag@example.org", true},
		{"", false},
		{"nodomain@", false},
		{"@nouser.com", false},
		{"spaces in@mail.com", false},
	}
	for _, tc := range cases {
		err := ValidateEmail(tc.email)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.email, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.email)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Food"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	withBudget := Category{Name: "Food", Budget: &Money{Cents: 50000}}
	if err := withBudget.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (Category{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	long := make([]byte, MaxCategoryNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if err := (Category{Name: string(long)}).Validate(); !errors.Is(err, ErrLongName) {
		t.Fatalf("expected ErrLongName, got %v", err)
	}
	if err := (Category{Name: "Food", Budget: &Money{Cents: 0}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 15),
		Description: "groceries",
		Amount:      Money{Cents: 2550},
		Type:        Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(Transaction) Transaction
		want error
	}{
		{"zero date", func(tx Transaction) Transaction { tx.Date = Date{}; return tx }, ErrInvalidDate},
		{"empty description", func(tx Transaction) Transaction { tx.Description = " "; return tx }, ErrEmptyDescription},
		{"zero amount", func(tx Transaction) Transaction { tx.Amount = Money{}; return tx }, ErrInvalidAmount},
		{"bad type", func(tx Transaction) Transaction { tx.Type = "transfer"; return tx }, ErrInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.mut(good).Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
