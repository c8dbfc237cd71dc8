package http

import (
	"net/http"

	"spendwise/internal/core"
)

// handleMonthlySeries returns the twelve per-month expense totals for a year.
func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request, ownerID string) {
	year, _, err := parseYearMonth(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	series, err := s.reports.MonthlySeries(r.Context(), ownerID, year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "monthly series", toMonthlySeriesView(series))
}

// handleBreakdown returns the per-category expense rollup for one month.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request, ownerID string) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	start, end := core.MonthRange(year, month)

	breakdown, err := s.reports.Breakdown(r.Context(), ownerID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "category breakdown", toBreakdownView(breakdown))
}

// handleProgress returns budget progress per category for one month.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, ownerID string) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	progress, err := s.reports.Progress(r.Context(), ownerID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "budget progress", toProgressView(progress))
}
