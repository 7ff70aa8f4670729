// Package api assembles the HTTP router: middleware chain, endpoint
// wiring and the metrics exposition.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/api/handlers"
	"github.com/panduhzz/FinancialTracker/internal/api/middleware"
	"github.com/panduhzz/FinancialTracker/internal/config"
	"github.com/panduhzz/FinancialTracker/internal/finance"
	"github.com/panduhzz/FinancialTracker/internal/statements"
)

// NewRouter builds the HTTP handler tree. The statements service may be
// nil when ingestion is not configured; its endpoint then reports the
// missing configuration.
func NewRouter(svc *finance.Service, stmts *statements.Service, cfg *config.Config, log zerolog.Logger) http.Handler {
	accounts := handlers.NewAccountsHandler(svc, log)
	transactions := handlers.NewTransactionsHandler(svc, log)
	analytics := handlers.NewAnalyticsHandler(svc, log)
	statementsHandler := handlers.NewStatementsHandler(stmts, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.Auth.JWTSecret, cfg.Auth.DevHeaderFallback, log))

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accounts.Create)
			r.Get("/", accounts.List)
			r.Get("/{accountID}", accounts.Get)
			r.Delete("/{accountID}", accounts.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", transactions.Create)
			r.Get("/", transactions.List)
			r.Get("/recurring", transactions.ListRecurring)
			r.Get("/{transactionID}", transactions.Get)
			r.Delete("/{transactionID}", transactions.Delete)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/balance-history", analytics.BalanceHistory)
			r.Get("/monthly-summary", analytics.MonthlySummaries)
		})

		r.Post("/statements/upload", statementsHandler.Upload)
	})

	return r
}
