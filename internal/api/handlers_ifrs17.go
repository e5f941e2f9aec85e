package api

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/ifrs17-reporting/internal/errors"
	"github.com/ifrs17-reporting/internal/ifrs17"
)

// handleMetadata handles GET /api/v1/ifrs17/metadata
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.reportingService.Metadata(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, meta)
}

// handleDashboardSummary handles GET /api/v1/ifrs17/dashboard/summary
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reportingService.DashboardSummary(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleLiabilityTrend handles GET /api/v1/ifrs17/dashboard/liability-trend
func (s *Server) handleLiabilityTrend(w http.ResponseWriter, r *http.Request) {
	series, err := s.reportingService.LiabilityTrend(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// handleCSMTrend handles GET /api/v1/ifrs17/dashboard/csm-trend
func (s *Server) handleCSMTrend(w http.ResponseWriter, r *http.Request) {
	series, err := s.reportingService.CSMTrend(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// handlePortfolioComparison handles GET /api/v1/ifrs17/dashboard/portfolio-comparison
func (s *Server) handlePortfolioComparison(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reportingService.PortfolioComparison(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// handleDashboard handles GET /api/v1/ifrs17/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.reportingService.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// handleLiabilityReconciliation handles GET /api/v1/ifrs17/reconciliations/liability
func (s *Server) handleLiabilityReconciliation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.reportingService.LiabilityReconciliation(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleCSMReconciliation handles GET /api/v1/ifrs17/reconciliations/csm
func (s *Server) handleCSMReconciliation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.reportingService.CSMReconciliation(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleData handles GET /api/v1/ifrs17/data?portfolio=&cohort_year=
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSliceFilter(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	slice, err := s.reportingService.Data(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slice)
}

// parseSliceFilter reads the optional portfolio and cohort_year query parameters.
// Empty values mean no filter.
func parseSliceFilter(r *http.Request) (ifrs17.SliceFilter, error) {
	query := r.URL.Query()
	filter := ifrs17.SliceFilter{Portfolio: query.Get("portfolio")}

	if raw := strings.TrimSpace(query.Get("cohort_year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperrors.NewInvalidParameterError("cohort_year", "must be an integer")
		}
		filter.CohortYear = &year
	}

	return filter, nil
}

// handleReload handles POST /api/v1/ifrs17/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.reportingService.Reload(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
