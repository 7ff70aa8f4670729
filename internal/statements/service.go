package statements

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/finance"
)

// TransactionCreator records extracted statement lines as transactions.
// *finance.Service satisfies it.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, userID string, in finance.CreateTransactionInput) (*domain.Transaction, error)
}

// Service runs the statement ingestion flow: stage the PDF in the blob
// store, analyze it, record the lines, then drop the blob.
type Service struct {
	blobs    BlobStore
	analyzer Analyzer
	finance  TransactionCreator
	clock    domain.Clock
	log      zerolog.Logger
}

// NewService creates the ingestion service.
func NewService(blobs BlobStore, analyzer Analyzer, fin TransactionCreator, clock domain.Clock, log zerolog.Logger) *Service {
	return &Service{blobs: blobs, analyzer: analyzer, finance: fin, clock: clock, log: log}
}

// IngestResult is the statement upload response payload.
type IngestResult struct {
	AccountNumber   string            `json:"account_number"`
	StartingBalance *float64          `json:"starting_balance"`
	EndingBalance   *float64          `json:"ending_balance"`
	Transactions    []ExtractedTxLine `json:"transactions"`
	Created         int               `json:"transactions_created"`
	BlobDeleted     bool              `json:"blob_deleted"`
	DeleteError     string            `json:"delete_error,omitempty"`
}

// Ingest analyzes an uploaded statement PDF and records its lines against
// accountID. Deposits become income, withdrawals become expenses. The
// staged blob is deleted after analysis; a deletion failure is reported in
// the result, never as an error.
func (s *Service) Ingest(ctx context.Context, userID, accountID string, pdf []byte) (*IngestResult, error) {
	objectName := ObjectName(s.clock.Now())
	if err := s.blobs.Upload(ctx, objectName, pdf); err != nil {
		return nil, fmt.Errorf("Ingest: staging statement: %w", err)
	}
	s.log.Info().Str("object", objectName).Int("bytes", len(pdf)).Msg("statement staged")

	// Analyze the stored copy, not the request bytes, so the analysis
	// covers exactly what was persisted.
	staged, err := s.blobs.Fetch(ctx, objectName)
	if err != nil {
		return nil, fmt.Errorf("Ingest: fetching staged statement: %w", err)
	}

	extraction, err := s.analyzer.Analyze(ctx, staged)
	if err != nil {
		return nil, fmt.Errorf("Ingest: analyzing statement: %w", err)
	}

	result := &IngestResult{
		AccountNumber:   extraction.AccountNumber,
		StartingBalance: extraction.StartingBalance,
		EndingBalance:   extraction.EndingBalance,
		Transactions:    extraction.Transactions,
	}

	for _, line := range extraction.Transactions {
		txType, err := transactionType(line.Type)
		if err != nil {
			s.log.Warn().Err(err).Str("description", line.Description).Msg("skipping statement line")
			continue
		}
		_, err = s.finance.CreateTransaction(ctx, userID, finance.CreateTransactionInput{
			AccountID:   accountID,
			Amount:      line.Amount,
			Description: line.Description,
			Category:    "statement-import",
			Type:        string(txType),
			Date:        line.Date,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("description", line.Description).Msg("skipping statement line")
			continue
		}
		result.Created++
	}

	if err := s.blobs.Delete(ctx, objectName); err != nil {
		result.DeleteError = err.Error()
		s.log.Warn().Err(err).Str("object", objectName).Msg("statement blob deletion failed")
	} else {
		result.BlobDeleted = true
	}

	s.log.Info().
		Str("object", objectName).
		Int("lines", len(extraction.Transactions)).
		Int("created", result.Created).
		Bool("blob_deleted", result.BlobDeleted).
		Msg("statement ingested")
	return result, nil
}

func transactionType(lineType string) (domain.TransactionType, error) {
	switch lineType {
	case "deposit":
		return domain.TransactionIncome, nil
	case "withdrawal":
		return domain.TransactionExpense, nil
	default:
		return "", fmt.Errorf("transactionType: unknown statement line type %q", lineType)
	}
}
