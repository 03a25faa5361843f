package security

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
)

// Custom claims set on Firebase users by the admin console
const (
	ClaimRole      = "role"
	ClaimAreaID    = "areaId"
	ClaimCompanyID = "companyId"
)

// IDTokenVerifier is the part of the Firebase auth client used here
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type SessionVerifier interface {
	VerifySession(ctx context.Context, idToken string) (*domain.Session, error)
}

type firebaseSessionVerifier struct {
	verifier IDTokenVerifier
}

func NewFirebaseSessionVerifier(verifier IDTokenVerifier) SessionVerifier {
	return &firebaseSessionVerifier{verifier: verifier}
}

func (v *firebaseSessionVerifier) VerifySession(ctx context.Context, idToken string) (*domain.Session, error) {
	logger.ExternalServiceCall("firebase-auth", "verify_id_token")
	token, err := v.verifier.VerifyIDToken(ctx, idToken)
	logger.ExternalServiceResult("firebase-auth", "verify_id_token", err)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return SessionFromClaims(token.UID, token.Claims)
}

// SessionFromClaims builds the caller session out of verified token claims.
// Users without a known role get no session.
func SessionFromClaims(uid string, claims map[string]interface{}) (*domain.Session, error) {
	s := &domain.Session{
		UID:       uid,
		Email:     stringClaim(claims, "email"),
		Role:      domain.Role(stringClaim(claims, ClaimRole)),
		AreaID:    stringClaim(claims, ClaimAreaID),
		CompanyID: stringClaim(claims, ClaimCompanyID),
	}
	switch s.Role {
	case domain.RoleSuperAdmin, domain.RoleAreaAdmin, domain.RoleCompanyAdmin, domain.RoleStaff:
		return s, nil
	}
	return nil, fmt.Errorf("%w: user %s has no accreditation role", ErrWrongTokenType, uid)
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
