package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/storage"
)

const (
	DefaultPathPrefix = "accreditations"
	pdfContentType    = "application/pdf"
)

type artifactService struct {
	store  storage.ArtifactStore
	prefix string
}

func NewArtifactService(store storage.ArtifactStore, prefix string) ArtifactService {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPathPrefix
	}
	return &artifactService{store: store, prefix: prefix}
}

// CredentialFileName is acreditacion_<unix millis>.pdf.
func CredentialFileName(now time.Time) string {
	return fmt.Sprintf("acreditacion_%d.pdf", now.UnixMilli())
}

// CredentialKey namespaces the file under the request id so two requests
// generated in the same millisecond never collide.
func (s *artifactService) CredentialKey(requestID string, now time.Time) string {
	return path.Join(s.prefix, requestID, CredentialFileName(now))
}

func (s *artifactService) UploadCredential(ctx context.Context, requestID string, data []byte, now time.Time) (*Artifact, error) {
	if requestID == "" {
		return nil, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty credential document", ErrInvalidInput)
	}

	key := s.CredentialKey(requestID, now)
	url, err := s.store.Upload(ctx, key, pdfContentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload credential: %w", err)
	}
	logger.Info("Credential uploaded", "requestID", requestID, "key", key, "bytes", len(data))
	return &Artifact{Key: key, FileName: path.Base(key), URL: url}, nil
}
