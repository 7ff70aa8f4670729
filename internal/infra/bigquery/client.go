package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// Client holds a shared BigQuery connection and hands out the repositories.
// Sharing one client avoids re-dialing per operation.
type Client struct {
	bq      *bigquery.Client
	project string
	dataset string
}

// NewClient connects to BigQuery for the given project and dataset.
func NewClient(ctx context.Context, project, dataset string) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewClient: creating bigquery client: %w", err)
	}
	return &Client{bq: bq, project: project, dataset: dataset}, nil
}

// Close closes the underlying BigQuery connection.
func (c *Client) Close() error {
	if c.bq != nil {
		return c.bq.Close()
	}
	return nil
}

// Accounts returns the account repository backed by this client.
func (c *Client) Accounts() *AccountStore {
	return &AccountStore{client: c}
}

// Transactions returns the transaction repository backed by this client.
func (c *Client) Transactions() *TransactionStore {
	return &TransactionStore{client: c}
}

// table returns the fully qualified table name for DML statements.
func (c *Client) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", c.project, c.dataset, name)
}

// run executes a DML query and waits for it, returning the number of
// affected rows.
func (c *Client) run(ctx context.Context, q *bigquery.Query) (int64, error) {
	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run: running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("run: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("run: job error: %w", err)
	}
	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return 0, nil
}
