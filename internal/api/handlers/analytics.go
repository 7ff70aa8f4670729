package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/analytics"
	"github.com/panduhzz/FinancialTracker/internal/api/middleware"
	"github.com/panduhzz/FinancialTracker/internal/finance"
)

// defaultMonths is the trailing window when the caller does not pass one.
const defaultMonths = 12

// AnalyticsHandler handles the reporting endpoints.
type AnalyticsHandler struct {
	svc *finance.Service
	log zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(svc *finance.Service, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, log: log}
}

// BalanceHistory handles GET /api/analytics/balance-history?months=N
func (h *AnalyticsHandler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	months := monthsParam(r)
	points, err := h.svc.BalanceHistory(r.Context(), middleware.GetUserID(r.Context()), months)
	if err != nil {
		writeServiceError(w, h.log, "Failed to compute balance history", err)
		return
	}

	// Scale the chart axis over the net worth range.
	var lo, hi float64
	for i, p := range points {
		if i == 0 || p.NetWorth < lo {
			lo = p.NetWorth
		}
		if i == 0 || p.NetWorth > hi {
			hi = p.NetWorth
		}
	}
	interval, axisMin, axisMax := analytics.AxisScale(lo, hi)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"points": points,
		"axis": map[string]float64{
			"interval": interval,
			"min":      axisMin,
			"max":      axisMax,
		},
	})
}

// MonthlySummaries handles GET /api/analytics/monthly-summary?months=N
func (h *AnalyticsHandler) MonthlySummaries(w http.ResponseWriter, r *http.Request) {
	months := monthsParam(r)
	summaries, err := h.svc.MonthlySummaries(r.Context(), middleware.GetUserID(r.Context()), months)
	if err != nil {
		writeServiceError(w, h.log, "Failed to compute monthly summaries", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
		"count":     len(summaries),
	})
}

func monthsParam(r *http.Request) int {
	raw := r.URL.Query().Get("months")
	if raw == "" {
		return defaultMonths
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months < 1 {
		return defaultMonths
	}
	return months
}
