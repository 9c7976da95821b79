package http

import (
	"net/http"
	"strconv"
	"time"
)

// parseYearMonth reads year and month from the query string, defaulting to the
// current month.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			year = n
		} else {
			year = -1
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			month = n
		} else {
			month = -1
		}
	}
	return year, month
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	report, err := s.deps.Reports.Monthly(r.Context(), currentUserID(r), year, month)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	png, err := s.deps.Reports.MonthlyChart(r.Context(), currentUserID(r), year, month)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	if png == nil {
		writeError(w, http.StatusNotFound, "not_found", "no data for this month", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
