package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"accreditation-backend/internal/config"
	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/security"
)

// AuthMiddleware enforces the security level configured for each named route
type AuthMiddleware struct {
	tokens   security.TokenManager
	sessions security.SessionVerifier
}

func NewAuthMiddleware(tokens security.TokenManager, sessions security.SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		level := config.GetSecurityLevel(name)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, err := security.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, err)
			return
		}

		if level == config.SecurityPush {
			if a.tokens == nil {
				writeError(w, security.ErrInvalidToken)
				return
			}
			claims, err := a.tokens.ValidatePushToken(token)
			if err != nil {
				writeError(w, err)
				return
			}
			logger.Debug("Push token accepted", "route", name, "source", claims.Source)
			next.ServeHTTP(w, r)
			return
		}

		if a.sessions == nil {
			writeError(w, security.ErrInvalidToken)
			return
		}
		session, err := a.sessions.VerifySession(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		if !allowed(level, session) {
			logger.Warn("Route denied for role", "route", name, "uid", session.UID, "role", session.Role)
			writeError(w, security.ErrWrongTokenType)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithSession(r.Context(), session)))
	})
}

func allowed(level config.SecurityLevel, s *domain.Session) bool {
	switch level {
	case config.SecurityStaff:
		return s.CanRedeem()
	case config.SecurityReviewer:
		return s.Role == domain.RoleSuperAdmin || s.Role == domain.RoleAreaAdmin || s.Role == domain.RoleCompanyAdmin
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
