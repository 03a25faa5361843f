package security

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
	ErrMissingToken   = errors.New("authorization token is not provided")
)

type TokenType string

const (
	TokenTypePush TokenType = "push"
)

const (
	pushIssuer   = "accreditation-backend"
	pushAudience = "access-request-events"
)

// PushClaims identify an event source allowed to deliver change events
type PushClaims struct {
	Source string    `json:"source"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	// GeneratePushToken mints a token for source. A zero ttl never expires.
	GeneratePushToken(source string, ttl time.Duration) (string, error)
	ValidatePushToken(tokenString string) (*PushClaims, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
	}
}

func (m *tokenManager) GeneratePushToken(source string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := PushClaims{
		Source: source,
		Type:   TokenTypePush,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  source,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   pushIssuer,
			Audience: jwt.ClaimStrings{pushAudience},
			ID:       generateJTI(),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidatePushToken(tokenString string) (*PushClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PushClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithAudience(pushAudience), jwt.WithIssuer(pushIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*PushClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypePush {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// BearerToken strips an optional "Bearer " prefix from an Authorization header
func BearerToken(header string) (string, error) {
	token := strings.TrimSpace(header)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Simple unique ID generator
func generateJTI() string {
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}
