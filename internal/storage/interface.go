package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// ArtifactStore persists generated credential files.
// Supports both mock (local filesystem) and cloud storage (Firebase / GCS)
type ArtifactStore interface {
	// Upload writes data under key, makes it publicly readable and
	// returns its public URL
	Upload(ctx context.Context, key string, contentType string, data []byte) (string, error)

	// Exists checks if an object exists and returns its size
	Exists(ctx context.Context, key string) (exists bool, size int64, err error)

	// Delete removes an object from storage
	Delete(ctx context.Context, key string) error

	// Open reads an object back (used by the mock download route and tests)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
