package notionexport

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/domain"
)

// Exporter writes transactions into one Notion database.
type Exporter struct {
	notion     NotionService
	databaseID string
	log        zerolog.Logger
}

// NewExporter creates an exporter targeting databaseID.
func NewExporter(notion NotionService, databaseID string, log zerolog.Logger) *Exporter {
	return &Exporter{notion: notion, databaseID: databaseID, log: log}
}

// Report summarizes one export run.
type Report struct {
	Created int
	Skipped int
}

// Export upserts the given transactions into the Notion database. The
// Transaction ID property tracks which rows already have a page, so
// re-running the export is idempotent. With dryRun set, nothing is
// written; the report counts what would happen.
func (e *Exporter) Export(ctx context.Context, txs []*domain.Transaction, dryRun bool) (*Report, error) {
	existing, err := e.existingTransactionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	e.log.Info().
		Int("transactions", len(txs)).
		Int("existing_pages", len(existing)).
		Bool("dry_run", dryRun).
		Msg("starting Notion export")

	report := &Report{}
	for _, tx := range txs {
		if existing[tx.ID] {
			report.Skipped++
			continue
		}
		if dryRun {
			e.log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] would create Notion page")
			report.Created++
			continue
		}
		if _, err := e.notion.CreatePage(ctx, e.databaseID, transactionProperties(tx)); err != nil {
			return report, fmt.Errorf("Export: creating page for transaction %s: %w", tx.ID, err)
		}
		report.Created++
	}

	e.log.Info().
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Msg("Notion export finished")
	return report, nil
}

// existingTransactionIDs pages through the database collecting the
// Transaction ID property of every page.
func (e *Exporter) existingTransactionIDs(ctx context.Context) (map[string]bool, error) {
	ids := make(map[string]bool)
	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{StartCursor: cursor}
		resp, err := e.notion.QueryDatabase(ctx, e.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("existingTransactionIDs: %w", err)
		}
		for _, page := range resp.Results {
			if id := pageTransactionID(&page); id != "" {
				ids[id] = true
			}
		}
		if !resp.HasMore {
			return ids, nil
		}
		cursor = resp.NextCursor
	}
}

func pageTransactionID(page *notionapi.Page) string {
	prop, ok := page.Properties["Transaction ID"]
	if !ok {
		return ""
	}
	rich, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rich.RichText) == 0 {
		return ""
	}
	return rich.RichText[0].PlainText
}
