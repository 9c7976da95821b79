package http

import (
	"errors"
	"net/http"

	"moneta/internal/services"
)

// maxImportBody caps the request body for CSV imports.
const maxImportBody = 10 << 20 // 10 MiB

// importAborted reports an import stopped at the row cap together with the
// rows that were committed before the cap was hit.
type importAborted struct {
	Error  errorDetail           `json:"error"`
	Result services.ImportResult `json:"result"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	if err := s.deps.CSV.Export(r.Context(), currentUserID(r), w); err != nil {
		// Headers may already be out; log and drop the connection.
		writeServiceError(r, w, err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBody)

	result, err := s.deps.CSV.Import(r.Context(), currentUserID(r), body)
	if errors.Is(err, services.ErrTooManyRows) {
		// Rows under the cap are already committed, so return them
		// alongside the error.
		writeJSON(w, http.StatusBadRequest, importAborted{
			Error:  errorDetail{Code: "invalid_request", Message: err.Error()},
			Result: result,
		})
		return
	}
	if errors.Is(err, services.ErrBadHeader) {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "import body too large", nil)
			return
		}
		writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
