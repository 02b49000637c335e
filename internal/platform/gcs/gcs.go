package gcs

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

func New(ctx context.Context) (*storage.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := storage.NewClient(dialCtx)
	if err != nil {
		return nil, fmt.Errorf("create storage client failed: %w", err)
	}
	return client, nil
}

// BucketStore uploads raw files into a single GCS bucket keyed by path.
type BucketStore struct {
	bucket *storage.BucketHandle
}

func NewBucketStore(client *storage.Client, bucket string) *BucketStore {
	return &BucketStore{bucket: client.Bucket(bucket)}
}

// Upload writes data to the object at path. An object that already exists at
// the same path is left untouched; upload paths embed a timestamp so a
// collision means the same upload was already completed.
func (s *BucketStore) Upload(ctx context.Context, path string, data io.Reader) error {
	writer := s.bucket.Object(path).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write storage object failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			return nil
		}
		return fmt.Errorf("finalize storage object failed: %w", err)
	}
	return nil
}
