package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"accreditation-backend/internal/logger"
)

// MockStorageService implements artifact storage using local filesystem
// This is for demo/testing without a Firebase Storage bucket
type MockStorageService struct {
	baseURL    string // Server URL (e.g., "http://localhost:8080")
	uploadsDir string // Local directory for uploads (e.g., "./uploads")
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &MockStorageService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		uploadsDir: uploadsDir,
	}, nil
}

// Upload saves the object and returns a download URL served by this process
func (m *MockStorageService) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	fullPath, err := m.resolve(key)
	if err != nil {
		return "", err
	}

	logger.ExternalServiceCall("mock-storage", "upload", "key", key, "bytes", len(data))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		logger.ExternalServiceResult("mock-storage", "upload", err, "key", key)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.ExternalServiceResult("mock-storage", "upload", nil, "key", key)
	return m.PublicURL(key), nil
}

// PublicURL is deterministic: the same key always maps to the same URL
func (m *MockStorageService) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/api/v1/artifacts/%s", m.baseURL, strings.Join(segments, "/"))
}

// Exists checks if file exists in local filesystem
func (m *MockStorageService) Exists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.resolve(key)
	if err != nil {
		return false, 0, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

// Delete deletes file from local filesystem
func (m *MockStorageService) Delete(ctx context.Context, key string) error {
	fullPath, err := m.resolve(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Open opens a file for reading (used by mock storage HTTP handler)
func (m *MockStorageService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := m.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// resolve maps a key to a path inside the uploads directory, refusing
// keys that would escape it
func (m *MockStorageService) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(m.uploadsDir, filepath.FromSlash(clean)), nil
}
