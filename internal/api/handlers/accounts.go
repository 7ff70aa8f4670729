// Package handlers implements the HTTP endpoints on top of the finance
// and statements services.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/api/middleware"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/finance"
)

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	svc *finance.Service
	log zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(svc *finance.Service, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{svc: svc, log: log}
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"account_name"`
		Type      string  `json:"account_type"`
		Balance   float64 `json:"balance"`
		CreatedAt string  `json:"created_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := finance.CreateAccountInput{Name: req.Name, Type: req.Type, Balance: req.Balance}
	if req.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "created_at must be RFC 3339")
			return
		}
		in.CreatedAt = ts
	}

	acc, err := h.svc.CreateAccount(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, h.log, "Failed to create account", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, acc)
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, "Failed to list accounts", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// Get handles GET /api/accounts/{accountID}
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetAccount(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "accountID"))
	if err != nil {
		writeServiceError(w, h.log, "Failed to get account", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, acc)
}

// Delete handles DELETE /api/accounts/{accountID}
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteAccount(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "accountID"))
	if err != nil {
		writeServiceError(w, h.log, "Failed to delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps service errors onto HTTP statuses: validation
// problems are the caller's fault, missing rows are 404, everything else
// is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, msg string, err error) {
	if domain.IsValidation(err) {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	log.Error().Err(err).Msg(msg)
	middleware.WriteError(w, http.StatusInternalServerError, msg)
}
