// Package storage is the document-storage collaborator: it keeps the rendered
// statement bytes and hands back a retrievable reference.
package storage

import (
	"context"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
)

// DocumentStore persists rendered document bytes under an owner and returns a
// retrievable reference.
type DocumentStore interface {
	Store(ctx context.Context, ownerID, fileName string, data []byte) (string, error)
}

// GCSStore stores documents in a Google Cloud Storage bucket. It assumes
// Application Default Credentials are configured.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore creates a document store backed by the given bucket.
func NewGCSStore(client *gcs.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// Store writes the bytes to statements/<owner>/<fileName> and returns the
// gs:// reference.
func (s *GCSStore) Store(ctx context.Context, ownerID, fileName string, data []byte) (string, error) {
	objectName := fmt.Sprintf("statements/%s/%s", ownerID, fileName)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload of %q: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}
