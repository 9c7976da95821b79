package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"moneta/internal/core"
	"moneta/internal/storage"
)

// ErrTooManyRows aborts an import that exceeds the configured row cap.
var ErrTooManyRows = errors.New("import exceeds maximum row count")

// ErrBadHeader rejects an import whose first row is not the expected header.
var ErrBadHeader = errors.New("unexpected CSV header")

// csvHeader is the column order for both export and import.
var csvHeader = []string{"date", "type", "amount", "category", "description"}

// RowError describes one rejected import row. Line numbers count from the
// header, so the first data row is line 2.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult reports a partial-success import: valid rows are committed,
// invalid ones are returned with the reason.
type ImportResult struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
}

type CSVService struct {
	storage *storage.Repository
	maxRows int
}

func NewCSVService(storage *storage.Repository, maxRows int) *CSVService {
	return &CSVService{storage: storage, maxRows: maxRows}
}

// Export writes all of a user's transactions as CSV, oldest first.
func (s *CSVService) Export(ctx context.Context, userID int64, w io.Writer) error {
	txs, err := s.storage.ListAllTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.String(),
			string(tx.Type),
			tx.Amount.Decimal(),
			tx.CategoryName,
			tx.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Import reads CSV rows and stores the valid ones. Unknown categories are
// created on the fly. Row-level failures do not abort the import.
func (s *CSVService) Import(ctx context.Context, userID int64, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if !errors.Is(err, io.EOF) && !errors.As(err, &parseErr) {
			return ImportResult{}, fmt.Errorf("read header: %w", err)
		}
		return ImportResult{}, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if !headerMatches(header) {
		return ImportResult{}, fmt.Errorf("%w: got %v, want %v", ErrBadHeader, header, csvHeader)
	}

	categories, err := s.categoryIndex(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	line := 1 // header

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				// Not a malformed row but a failing reader. Surface it so
				// the caller can tell a truncated body apart from bad input.
				return result, fmt.Errorf("read row %d: %w", line, err)
			}
			result.Errors = append(result.Errors, RowError{
				Line:    parseErr.Line,
				Message: parseErr.Err.Error(),
			})
			if errors.Is(parseErr.Err, csv.ErrFieldCount) {
				continue
			}
			// The reader cannot recover from malformed quoting.
			return result, nil
		}

		if result.Imported+len(result.Errors) >= s.maxRows {
			return result, ErrTooManyRows
		}

		tx, rowErr := s.parseRow(ctx, userID, record, categories)
		if rowErr != "" {
			result.Errors = append(result.Errors, RowError{Line: line, Message: rowErr})
			continue
		}

		if _, err := s.storage.CreateTransaction(ctx, tx); err != nil {
			return result, fmt.Errorf("store row %d: %w", line, err)
		}
		result.Imported++
	}

	return result, nil
}

// parseRow turns one CSV record into a transaction, returning a human-readable
// reason when the row is invalid.
func (s *CSVService) parseRow(ctx context.Context, userID int64, record []string, categories map[string]int64) (core.Transaction, string) {
	date, err := core.ParseDate(strings.TrimSpace(record[0]))
	if err != nil {
		return core.Transaction{}, fmt.Sprintf("invalid date %q", record[0])
	}

	txType := core.TransactionType(strings.ToLower(strings.TrimSpace(record[1])))
	if !txType.Valid() {
		return core.Transaction{}, fmt.Sprintf("invalid type %q", record[1])
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(record[2]))
	if err != nil {
		return core.Transaction{}, fmt.Sprintf("invalid amount %q", record[2])
	}

	tx := core.Transaction{
		UserID:      userID,
		Date:        date,
		Description: strings.TrimSpace(record[4]),
		Amount:      core.Money{Cents: cents},
		Type:        txType,
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err.Error()
	}

	categoryName := strings.TrimSpace(record[3])
	if categoryName != "" {
		id, err := s.resolveCategory(ctx, userID, categoryName, categories)
		if err != nil {
			return core.Transaction{}, fmt.Sprintf("category %q: %v", categoryName, err)
		}
		tx.CategoryID = &id
	}

	return tx, ""
}

// resolveCategory finds or creates a category by name, keeping the index in
// sync across rows.
func (s *CSVService) resolveCategory(ctx context.Context, userID int64, name string, index map[string]int64) (int64, error) {
	if id, ok := index[strings.ToLower(name)]; ok {
		return id, nil
	}

	created, err := s.storage.CreateCategory(ctx, userID, name, nil)
	if errors.Is(err, storage.ErrConflict) {
		// Another spelling of an existing name, reload and retry the lookup.
		fresh, err := s.categoryIndex(ctx, userID)
		if err != nil {
			return 0, err
		}
		for k, v := range fresh {
			index[k] = v
		}
		if id, ok := index[strings.ToLower(name)]; ok {
			return id, nil
		}
		return 0, storage.ErrConflict
	}
	if err != nil {
		return 0, err
	}

	index[strings.ToLower(name)] = created.ID
	return created.ID, nil
}

func (s *CSVService) categoryIndex(ctx context.Context, userID int64) (map[string]int64, error) {
	cats, err := s.storage.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	index := make(map[string]int64, len(cats))
	for _, c := range cats {
		index[strings.ToLower(c.Name)] = c.ID
	}
	return index, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(csvHeader) {
		return false
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), csvHeader[i]) {
			return false
		}
	}
	return true
}
