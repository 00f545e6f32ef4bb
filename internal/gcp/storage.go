package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
)

const uploadAttempts = 4

// UploadFileAtomically copies a local file to a GCS object only if the object
// doesn't already exist. An existing object is not a failure: re-running a
// published check must not overwrite the archived copy.
func UploadFileAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, localPath string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.Reset()

	attempt := 0
	op := func() error {
		attempt++
		err := uploadOnce(ctx, bucket, objectName, localPath)
		if err == nil {
			return nil
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			slog.Info("Object already exists. Skipping upload.", "gcsObject", objectName)
			return nil
		}
		if os.IsNotExist(err) {
			return backoff.Permanent(err)
		}
		slog.Warn("Upload failed, will retry.", "gcsObject", objectName, "attempt", attempt, "error", err)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uploadAttempts-1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("upload for %s failed after %d attempts: %w", objectName, attempt, err)
	}
	return nil
}

func uploadOnce(ctx context.Context, bucket *storage.BucketHandle, objectName, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(writeCtx)
	w.ContentType = "application/pdf"
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to copy to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}
