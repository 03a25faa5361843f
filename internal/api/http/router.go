package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"accreditation-backend/internal/config"
	"accreditation-backend/internal/security"
	"accreditation-backend/internal/service"
	"accreditation-backend/internal/storage"
	"accreditation-backend/internal/trigger"
)

// RouterDeps are the collaborators behind the HTTP surface. Nil fields
// leave their routes unregistered.
type RouterDeps struct {
	Tokens    security.TokenManager
	Sessions  security.SessionVerifier
	Trigger   *trigger.Handler
	Reviews   service.ReviewService
	Artifacts storage.ArtifactStore
}

func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)
	router.Use(NewAuthMiddleware(deps.Tokens, deps.Sessions).Middleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name(config.RouteHealth)

	if deps.Trigger != nil {
		events := NewEventHandler(deps.Trigger)
		router.HandleFunc("/v1/events/access-requests", events.HandlePush).
			Methods(http.MethodPost).Name(config.RouteEventPush)
	}

	if deps.Reviews != nil {
		reviews := NewReviewHandler(deps.Reviews)
		router.HandleFunc("/v1/access-requests/{id}/review", reviews.HandleReview).
			Methods(http.MethodPost).Name(config.RouteReview)
		router.HandleFunc("/v1/access-requests/{id}/redeem", reviews.HandleRedeem).
			Methods(http.MethodPost).Name(config.RouteRedeem)
	}

	if deps.Artifacts != nil {
		RegisterArtifactRoutes(router, deps.Artifacts)
	}
	return router
}

// RegisterArtifactRoutes registers the mock storage download endpoint
func RegisterArtifactRoutes(router *mux.Router, store storage.ArtifactStore) {
	handler := NewArtifactHandler(store)
	router.HandleFunc("/api/v1/artifacts/{key:.*}", handler.HandleDownload).
		Methods(http.MethodGet).Name(config.RouteArtifactFetch)
}
