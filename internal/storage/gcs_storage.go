package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"

	"accreditation-backend/internal/logger"
)

// GCSStore keeps artifacts in the project's Firebase Storage bucket
type GCSStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewGCSStore(bucket *gcs.BucketHandle, bucketName string) *GCSStore {
	return &GCSStore{bucket: bucket, bucketName: bucketName}
}

// Upload writes the object, grants public read access and returns the
// public URL. The object stays public until deleted.
func (s *GCSStore) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	obj := s.bucket.Object(key)
	logger.ExternalServiceCall("gcs", "upload", "bucket", s.bucketName, "key", key, "bytes", len(data))

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		logger.ExternalServiceResult("gcs", "upload", err, "key", key)
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		logger.ExternalServiceResult("gcs", "upload", err, "key", key)
		return "", fmt.Errorf("failed to finalize object %s: %w", key, err)
	}

	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		logger.ExternalServiceResult("gcs", "make_public", err, "key", key)
		return "", fmt.Errorf("failed to make object %s public: %w", key, err)
	}

	logger.ExternalServiceResult("gcs", "upload", nil, "key", key)
	return PublicObjectURL(s.bucketName, key), nil
}

func (s *GCSStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, attrs.Size, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return r, nil
}

// PublicObjectURL is the anonymous download URL of a public object
func PublicObjectURL(bucketName, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, strings.Join(segments, "/"))
}
