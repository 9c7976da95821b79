package http

import (
	"errors"
	"net/http"

	"moneta/internal/core"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body", nil)
		return
	}

	user, token, expiresAt, err := s.deps.Accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body", nil)
		return
	}

	user, token, expiresAt, err := s.deps.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Accounts.DeleteAccount(r.Context(), currentUserID(r)); err != nil {
		writeServiceError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeAmountError distinguishes a bad amount inside the body from generally
// malformed JSON.
func decodeAmountError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidAmount) {
		writeError(w, http.StatusBadRequest, "invalid_request", core.ErrInvalidAmount.Error(), nil)
		return
	}
	writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body", nil)
}
