// Package statements ingests uploaded bank statement PDFs: the file is
// staged in a GCS bucket, analyzed with Gemini, and removed once the
// structured fields have been extracted.
package statements

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// BlobStore stages statement files in cloud storage for the duration of
// the analysis.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, data []byte) error
	Fetch(ctx context.Context, objectName string) ([]byte, error)
	Delete(ctx context.Context, objectName string) error
}

// GCSBlobStore is the Google Cloud Storage implementation of BlobStore.
// It assumes Application Default Credentials are configured.
type GCSBlobStore struct {
	bucket string
}

// NewGCSBlobStore returns a blob store writing into the given bucket.
func NewGCSBlobStore(bucket string) *GCSBlobStore {
	return &GCSBlobStore{bucket: bucket}
}

// ObjectName generates a unique object name for an uploaded statement.
func ObjectName(now time.Time) string {
	return fmt.Sprintf("bank-statement_%s_%s.pdf",
		now.Format("20060102_150405"), uuid.NewString()[:8])
}

// Upload writes data to the bucket under objectName.
func (s *GCSBlobStore) Upload(ctx context.Context, objectName string, data []byte) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("Upload: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize upload: %w", err)
	}
	return nil
}

// Fetch downloads the object bytes from the bucket.
func (s *GCSBlobStore) Fetch(ctx context.Context, objectName string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read GCS object: %w", err)
	}
	return data, nil
}

// Delete removes the object from the bucket.
func (s *GCSBlobStore) Delete(ctx context.Context, objectName string) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("Delete: create storage client: %w", err)
	}
	defer client.Close()

	if err := client.Bucket(s.bucket).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("Delete: delete GCS object: %w", err)
	}
	return nil
}

var _ BlobStore = (*GCSBlobStore)(nil)
