package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/storage"
)

// ArtifactHandler serves generated credentials kept in local mock storage
type ArtifactHandler struct {
	store storage.ArtifactStore
}

func NewArtifactHandler(store storage.ArtifactStore) *ArtifactHandler {
	return &ArtifactHandler{store: store}
}

func (h *ArtifactHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}

	file, err := h.store.Open(r.Context(), key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Warn("Failed to open artifact", "key", key, "error", err)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": path.Base(key)}))
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Failed to stream artifact", "key", key, "error", err)
	}
}
