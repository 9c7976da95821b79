package http

import (
	"net/http"
	"strconv"

	"moneta/internal/core"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		decodeAmountError(w, err)
		return
	}

	created, err := s.deps.Categories.Create(r.Context(), currentUserID(r), req.Name, budgetFromField(req.Budget))
	if err != nil {
		writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.List(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponses(cats))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "resource not found", nil)
		return
	}

	cat, err := s.deps.Categories.Get(r.Context(), currentUserID(r), id)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "resource not found", nil)
		return
	}

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		decodeAmountError(w, err)
		return
	}

	updated, err := s.deps.Categories.Update(r.Context(), currentUserID(r), id, req.Name, budgetFromField(req.Budget))
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "resource not found", nil)
		return
	}

	if err := s.deps.Categories.Delete(r.Context(), currentUserID(r), id); err != nil {
		writeServiceError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func budgetFromField(f *amountField) *core.Money {
	if f == nil || !f.set {
		return nil
	}
	return &core.Money{Cents: f.cents}
}
