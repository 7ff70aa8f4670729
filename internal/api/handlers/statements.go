package handlers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/api/middleware"
	"github.com/panduhzz/FinancialTracker/internal/statements"
)

// maxStatementBytes caps uploaded statement size at 20 MiB.
const maxStatementBytes = 20 << 20

// StatementsHandler handles the statement upload endpoint.
type StatementsHandler struct {
	svc *statements.Service
	log zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(svc *statements.Service, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{svc: svc, log: log}
}

// Upload handles POST /api/statements/upload. The statement PDF arrives as
// the "file" part of a multipart form; account_id names the account the
// extracted lines are recorded against.
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		middleware.WriteError(w, http.StatusInternalServerError, "Statement ingestion not configured")
		return
	}

	if err := r.ParseMultipartForm(maxStatementBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "No file selected")
		return
	}

	accountID := r.FormValue("account_id")
	if accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	pdf, err := io.ReadAll(io.LimitReader(file, maxStatementBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.svc.Ingest(r.Context(), middleware.GetUserID(r.Context()), accountID, pdf)
	if err != nil {
		writeServiceError(w, h.log, "Statement processing failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}
