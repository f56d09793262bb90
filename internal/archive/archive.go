// Package archive keeps a copy of every uploaded statement in GCS so a
// statement can be re-processed or inspected after ingestion.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Archiver stores raw statement files and hands back a retrievable URI.
type Archiver interface {
	Store(ctx context.Context, userID, filename string, content []byte) (string, error)
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// GCSArchiver writes statements to a GCS bucket under
// statements/{userID}/{timestamp}_{uuid}_{filename}. It assumes Application
// Default Credentials are configured.
type GCSArchiver struct {
	client *storage.Client
	bucket string
}

// NewGCSArchiver dials GCS with Application Default Credentials.
func NewGCSArchiver(ctx context.Context, bucket string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSArchiver: create storage client: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket}, nil
}

// Store uploads the statement bytes and returns a gs:// URI.
func (a *GCSArchiver) Store(ctx context.Context, userID, filename string, content []byte) (string, error) {
	objectName := fmt.Sprintf("statements/%s/%s_%s_%s",
		userID,
		time.Now().UTC().Format("20060102T150405"),
		uuid.NewString()[:8],
		path.Base(filename),
	)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Store: write to GCS object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Store: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// Fetch downloads the archived statement at the given gs:// URI.
func (a *GCSArchiver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := parseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	r, err := a.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: open object %s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read object: %w", err)
	}
	return data, nil
}

// Close releases the underlying storage client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

func parseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// NopArchiver satisfies Archiver when no bucket is configured. Store reports
// an empty URI; the pipeline treats that as "not archived".
type NopArchiver struct{}

func (NopArchiver) Store(ctx context.Context, userID, filename string, content []byte) (string, error) {
	return "", nil
}

func (NopArchiver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return nil, fmt.Errorf("Fetch: archiving is disabled")
}
