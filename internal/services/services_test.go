package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moneta/internal/auth"
	"moneta/internal/charts"
	"moneta/internal/core"
	"moneta/internal/events"
	"moneta/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.Open(storage.BackendSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestAuth(t *testing.T) *auth.Manager {
	t.Helper()
	return auth.NewManager("test_secret", time.Hour, bcrypt.MinCost)
}

type capturingPublisher struct {
	events []*events.TransactionEvent
	err    error
}

func (p *capturingPublisher) PublishTransactionEvent(_ context.Context, ev *events.TransactionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func TestAccountService(t *testing.T) {
	repo := newTestStorage(t)
	accounts := NewAccountService(repo, newTestAuth(t))
	ctx := context.Background()

	user, token, expiresAt, err := accounts.Register(ctx, "new@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" || expiresAt.Before(time.Now()) {
		t.Fatalf("expected a valid token, got %q expiring %v", token, expiresAt)
	}

	t.Run("register seeds default categories", func(t *testing.T) {
		cats, err := repo.ListCategories(ctx, user.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		names := make([]string, len(cats))
		for i, c := range cats {
			names[i] = c.Name
		}
		for _, want := range []string{"General", "Food", "Transport"} {
			found := false
			for _, name := range names {
				if name == want {
					found = true
				}
			}
			if !found {
				t.Errorf("missing seeded category %q in %v", want, names)
			}
		}
	})

	t.Run("register rejects bad input", func(t *testing.T) {
		if _, _, _, err := accounts.Register(ctx, "not-an-email", "password123"); !errors.Is(err, core.ErrInvalidEmail) {
			t.Errorf("expected ErrInvalidEmail, got %v", err)
		}
		if _, _, _, err := accounts.Register(ctx, "ok@example.com", "short"); !errors.Is(err, core.ErrShortPassword) {
			t.Errorf("expected ErrShortPassword, got %v", err)
		}
	})

	t.Run("register duplicate email conflicts", func(t *testing.T) {
		if _, _, _, err := accounts.Register(ctx, "new@example.com", "password123"); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("login", func(t *testing.T) {
		got, token, _, err := accounts.Login(ctx, "new@example.com", "password123")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if got.ID != user.ID || token == "" {
			t.Fatalf("unexpected login result: %+v", got)
		}
	})

	t.Run("login failures are indistinguishable", func(t *testing.T) {
		if _, _, _, err := accounts.Login(ctx, "new@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
		}
		if _, _, _, err := accounts.Login(ctx, "unknown@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("delete account", func(t *testing.T) {
		victim, _, _, err := accounts.Register(ctx, "victim@example.com", "password123")
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if err := accounts.DeleteAccount(ctx, victim.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, _, _, err := accounts.Login(ctx, "victim@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected login to fail after deletion, got %v", err)
		}
	})
}

func TestTransactionService(t *testing.T) {
	repo := newTestStorage(t)
	accounts := NewAccountService(repo, newTestAuth(t))
	ctx := context.Background()

	user, _, _, err := accounts.Register(ctx, "tx@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	other, _, _, err := accounts.Register(ctx, "other@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	cats, err := repo.ListCategories(ctx, user.ID)
	if err != nil || len(cats) == 0 {
		t.Fatalf("list categories: %v", err)
	}
	foodID := cats[0].ID

	publisher := &capturingPublisher{}
	txs := NewTransactionService(repo, publisher)

	t.Run("create publishes an event", func(t *testing.T) {
		created, err := txs.Create(ctx, core.Transaction{
			UserID:      user.ID,
			CategoryID:  &foodID,
			Date:        core.NewDate(2025, 8, 1),
			Description: "lunch",
			Amount:      core.Money{Cents: 1250},
			Type:        core.Expense,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(publisher.events) != 1 || publisher.events[0].Action != events.ActionCreated {
			t.Fatalf("unexpected events: %+v", publisher.events)
		}
		if publisher.events[0].ID != created.ID {
			t.Fatalf("event id %d, want %d", publisher.events[0].ID, created.ID)
		}
	})

	t.Run("foreign category is not found", func(t *testing.T) {
		_, err := txs.Create(ctx, core.Transaction{
			UserID:      other.ID,
			CategoryID:  &foodID,
			Date:        core.NewDate(2025, 8, 1),
			Description: "sneaky",
			Amount:      core.Money{Cents: 100},
			Type:        core.Expense,
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("invalid transaction is rejected before storage", func(t *testing.T) {
		_, err := txs.Create(ctx, core.Transaction{
			UserID:      user.ID,
			Date:        core.NewDate(2025, 8, 1),
			Description: "  ",
			Amount:      core.Money{Cents: 100},
			Type:        core.Expense,
		})
		if !errors.Is(err, core.ErrEmptyDescription) {
			t.Fatalf("expected ErrEmptyDescription, got %v", err)
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		broken := NewTransactionService(repo, &capturingPublisher{err: errors.New("broker down")})
		created, err := broken.Create(ctx, core.Transaction{
			UserID:      user.ID,
			Date:        core.NewDate(2025, 8, 2),
			Description: "still saved",
			Amount:      core.Money{Cents: 900},
			Type:        core.Expense,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := repo.GetTransaction(ctx, user.ID, created.ID); err != nil {
			t.Fatalf("transaction should be stored: %v", err)
		}
	})

	t.Run("delete publishes an event", func(t *testing.T) {
		created, err := txs.Create(ctx, core.Transaction{
			UserID:      user.ID,
			Date:        core.NewDate(2025, 8, 3),
			Description: "to delete",
			Amount:      core.Money{Cents: 100},
			Type:        core.Expense,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		publisher.events = nil
		if err := txs.Delete(ctx, user.ID, created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if len(publisher.events) != 1 || publisher.events[0].Action != events.ActionDeleted {
			t.Fatalf("unexpected events: %+v", publisher.events)
		}
	})
}

func TestReportService(t *testing.T) {
	repo := newTestStorage(t)
	reports := NewReportService(repo, charts.NewGenerator())
	accounts := NewAccountService(repo, newTestAuth(t))
	ctx := context.Background()

	user, _, _, err := accounts.Register(ctx, "report@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("month bounds", func(t *testing.T) {
		if _, err := reports.Monthly(ctx, user.ID, 2025, 0); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("month 0: expected ErrInvalidMonth, got %v", err)
		}
		if _, err := reports.Monthly(ctx, user.ID, 2025, 13); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("month 13: expected ErrInvalidMonth, got %v", err)
		}
	})

	t.Run("empty month chart is nil", func(t *testing.T) {
		png, err := reports.MonthlyChart(ctx, user.ID, 2025, 1)
		if err != nil {
			t.Fatalf("chart: %v", err)
		}
		if png != nil {
			t.Fatal("expected nil chart for empty month")
		}
	})

	t.Run("chart renders for a month with data", func(t *testing.T) {
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID:      user.ID,
			Date:        core.NewDate(2025, 3, 10),
			Description: "salary",
			Amount:      core.Money{Cents: 100000},
			Type:        core.Income,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		png, err := reports.MonthlyChart(ctx, user.ID, 2025, 3)
		if err != nil {
			t.Fatalf("chart: %v", err)
		}
		if len(png) == 0 {
			t.Fatal("expected a rendered chart")
		}
	})
}

func TestCSVService(t *testing.T) {
	repo := newTestStorage(t)
	accounts := NewAccountService(repo, newTestAuth(t))
	ctx := context.Background()

	user, _, _, err := accounts.Register(ctx, "csv@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := NewCSVService(repo, 100)

	t.Run("import with partial success", func(t *testing.T) {
		input := strings.Join([]string{
			"date,type,amount,category,description",
			"2025-01-05,expense,32.50,Food,groceries",
			"not-a-date,expense,10.00,Food,bad date",
			"2025-01-06,teleport,10.00,Food,bad type",
			"2025-01-07,income,2500.00,,salary",
			"2025-01-08,expense,abc,Food,bad amount",
			"2025-01-09,expense,5.00,Books,new category",
		}, "\n")

		result, err := svc.Import(ctx, user.ID, strings.NewReader(input))
		if err != nil {
			t.Fatalf("import: %v", err)
		}
		if result.Imported != 3 {
			t.Errorf("imported = %d, want 3", result.Imported)
		}
		if len(result.Errors) != 3 {
			t.Fatalf("errors = %d, want 3: %+v", len(result.Errors), result.Errors)
		}
		if result.Errors[0].Line != 3 {
			t.Errorf("first error line = %d, want 3", result.Errors[0].Line)
		}

		// The unknown category was created on the fly.
		cats, err := repo.ListCategories(ctx, user.ID)
		if err != nil {
			t.Fatalf("list categories: %v", err)
		}
		found := false
		for _, c := range cats {
			if c.Name == "Books" {
				found = true
			}
		}
		if !found {
			t.Error("expected Books category to be created")
		}
	})

	t.Run("export round trip", func(t *testing.T) {
		var buf bytes.Buffer
		if err := svc.Export(ctx, user.ID, &buf); err != nil {
			t.Fatalf("export: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if lines[0] != "date,type,amount,category,description" {
			t.Fatalf("unexpected header: %q", lines[0])
		}
		if len(lines) != 4 { // header + 3 imported rows
			t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
		}
		if !strings.HasPrefix(lines[1], "2025-01-05,expense,32.50,Food,groceries") {
			t.Errorf("unexpected first row: %q", lines[1])
		}

		// Re-import into a fresh account.
		fresh, _, _, err := accounts.Register(ctx, "csv2@example.com", "password123")
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		result, err := svc.Import(ctx, fresh.ID, bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("re-import: %v", err)
		}
		if result.Imported != 3 || len(result.Errors) != 0 {
			t.Fatalf("unexpected re-import result: %+v", result)
		}
	})

	t.Run("bad header is rejected", func(t *testing.T) {
		_, err := svc.Import(ctx, user.ID, strings.NewReader("a,b,c,d,e\n"))
		if err == nil {
			t.Fatal("expected header error")
		}
	})

	t.Run("row cap", func(t *testing.T) {
		small := NewCSVService(repo, 2)
		input := strings.Join([]string{
			"date,type,amount,category,description",
			"2025-01-05,expense,1.00,,one",
			"2025-01-06,expense,1.00,,two",
			"2025-01-07,expense,1.00,,three",
		}, "\n")
		result, err := small.Import(ctx, user.ID, strings.NewReader(input))
		if !errors.Is(err, ErrTooManyRows) {
			t.Fatalf("expected ErrTooManyRows, got %v", err)
		}
		if result.Imported != 2 {
			t.Fatalf("imported = %d, want 2", result.Imported)
		}
	})

	t.Run("reader failure surfaces as error", func(t *testing.T) {
		boom := errors.New("stream broke")
		input := strings.Join([]string{
			"date,type,amount,category,description",
			"2025-02-01,expense,1.00,,first",
			"", // the failing reader takes over here
		}, "\n")
		r := io.MultiReader(strings.NewReader(input), iotest.ErrReader(boom))

		result, err := svc.Import(ctx, user.ID, r)
		if !errors.Is(err, boom) {
			t.Fatalf("expected the reader error, got %v", err)
		}
		if result.Imported != 1 {
			t.Fatalf("imported = %d, want 1", result.Imported)
		}
	})
}
