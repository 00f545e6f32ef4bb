package services

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/resultwatch/internal/gcp"
)

// Archiver keeps a durable copy of the merged result.
type Archiver interface {
	Archive(ctx context.Context, runID, localPath string) (string, error)
}

// GCSArchiver uploads to gs://{bucket}/{runId}/{file}. An object that
// already exists is left untouched.
type GCSArchiver struct {
	bucket *storage.BucketHandle
	name   string
}

func NewGCSArchiver(client *storage.Client, bucket string) *GCSArchiver {
	return &GCSArchiver{bucket: client.Bucket(bucket), name: bucket}
}

func (a *GCSArchiver) Archive(ctx context.Context, runID, localPath string) (string, error) {
	object := path.Join(runID, filepath.Base(localPath))
	if err := gcp.UploadFileAtomically(ctx, a.bucket, object, localPath); err != nil {
		return "", fmt.Errorf("failed to archive merged result: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", a.name, object), nil
}
