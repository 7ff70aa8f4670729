package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/api/middleware"
	"github.com/panduhzz/FinancialTracker/internal/finance"
)

// TransactionsHandler handles transaction and recurring-series endpoints.
type TransactionsHandler struct {
	svc *finance.Service
	log zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc *finance.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, log: log}
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID   string  `json:"account_id"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Type        string  `json:"transaction_type"`
		Date        string  `json:"transaction_date"`
		Recurring   bool    `json:"is_recurring"`
		Frequency   string  `json:"recurrence_frequency"`
		StartDate   string  `json:"recurrence_start_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.svc.CreateTransaction(r.Context(), middleware.GetUserID(r.Context()), finance.CreateTransactionInput{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Date:        req.Date,
		Recurring:   req.Recurring,
		Frequency:   req.Frequency,
		StartDate:   req.StartDate,
	})
	if err != nil {
		writeServiceError(w, h.log, "Failed to create transaction", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ListTransactions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, "Failed to list transactions", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Get handles GET /api/transactions/{transactionID}
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.GetTransaction(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeServiceError(w, h.log, "Failed to get transaction", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/transactions/{transactionID}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteTransaction(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeServiceError(w, h.log, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRecurring handles GET /api/transactions/recurring
func (h *TransactionsHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	series, err := h.svc.ListRecurringSeries(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, "Failed to list recurring series", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"series": series,
		"count":  len(series),
	})
}
