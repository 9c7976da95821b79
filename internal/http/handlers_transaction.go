package http

import (
	"net/http"
	"strconv"

	"moneta/internal/core"
	"moneta/internal/storage"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		decodeAmountError(w, err)
		return
	}

	tx, err := transactionFromRequest(currentUserID(r), req)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}

	created, err := s.deps.Transactions.Create(r.Context(), tx)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "resource not found", nil)
		return
	}

	tx, err := s.deps.Transactions.Get(r.Context(), currentUserID(r), id)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "resource not found", nil)
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		decodeAmountError(w, err)
		return
	}

	tx, err := transactionFromRequest(currentUserID(r), req)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	tx.ID = id

	updated, err := s.deps.Transactions.Update(r.Context(), tx)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "resource not found", nil)
		return
	}

	if err := s.deps.Transactions.Delete(r.Context(), currentUserID(r), id); err != nil {
		writeServiceError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, fieldErrs := parseTransactionFilter(r)
	if len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid filter parameters", fieldErrs)
		return
	}

	txs, err := s.deps.Transactions.List(r.Context(), currentUserID(r), filter)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

// parseTransactionFilter reads list filters from the query string, collecting
// per-field problems instead of stopping at the first.
func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, map[string]string) {
	q := r.URL.Query()
	var filter storage.TransactionFilter
	fieldErrs := make(map[string]string)

	filter.Search = q.Get("q")

	if raw := q.Get("type"); raw != "" {
		t := core.TransactionType(raw)
		if !t.Valid() {
			fieldErrs["type"] = "must be 'expense' or 'income'"
		}
		filter.Type = t
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fieldErrs["category_id"] = "must be a positive integer"
		} else {
			filter.CategoryID = &id
		}
	}

	if raw := q.Get("start"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			fieldErrs["start"] = "must be a YYYY-MM-DD date"
		}
		filter.From = d
	}

	if raw := q.Get("end"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			fieldErrs["end"] = "must be a YYYY-MM-DD date"
		}
		filter.To = d
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fieldErrs["limit"] = "must be a positive integer"
		}
		filter.Limit = n
	}

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fieldErrs["offset"] = "must be a non-negative integer"
		}
		filter.Offset = n
	}

	if len(fieldErrs) == 0 {
		fieldErrs = nil
	}
	return filter, fieldErrs
}

func transactionFromRequest(userID int64, req transactionRequest) (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	if !req.Amount.set {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	return core.Transaction{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Date:        date,
		Description: req.Description,
		Amount:      core.Money{Cents: req.Amount.cents},
		Type:        core.TransactionType(req.Type),
	}, nil
}
