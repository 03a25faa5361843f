package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"accreditation-backend/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_PushToken(t *testing.T) {
	tm := NewTokenManager(testSecret)

	t.Run("Round trip", func(t *testing.T) {
		token, err := tm.GeneratePushToken("eventarc", time.Hour)
		require.NoError(t, err)

		claims, err := tm.ValidatePushToken(token)
		require.NoError(t, err)
		assert.Equal(t, "eventarc", claims.Source)
		assert.Equal(t, TokenTypePush, claims.Type)
		assert.NotNil(t, claims.ExpiresAt)
	})

	t.Run("Non-expiring token", func(t *testing.T) {
		token, err := tm.GeneratePushToken("pubsub", 0)
		require.NoError(t, err)
		claims, err := tm.ValidatePushToken(token)
		require.NoError(t, err)
		assert.Nil(t, claims.ExpiresAt)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("another-secret-another-secret-xx").GeneratePushToken("x", time.Hour)
		require.NoError(t, err)
		_, err = tm.ValidatePushToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := PushClaims{
			Source: "x",
			Type:   TokenTypePush,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    pushIssuer,
				Audience:  jwt.ClaimStrings{pushAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = tm.ValidatePushToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		claims := PushClaims{Type: TokenTypePush, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: pushIssuer, Audience: jwt.ClaimStrings{"api-access"},
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = tm.ValidatePushToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong type", func(t *testing.T) {
		claims := PushClaims{Type: "access", RegisteredClaims: jwt.RegisteredClaims{
			Issuer: pushIssuer, Audience: jwt.ClaimStrings{pushAudience},
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = tm.ValidatePushToken(token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidatePushToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = BearerToken("bearer   xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	tok, err = BearerToken("raw-token")
	require.NoError(t, err)
	assert.Equal(t, "raw-token", tok)

	_, err = BearerToken("   ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

type MockIDTokenVerifier struct {
	mock.Mock
}

func (m *MockIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func TestFirebaseSessionVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("Area admin session", func(t *testing.T) {
		m := new(MockIDTokenVerifier)
		m.On("VerifyIDToken", ctx, "id-token").Return(&auth.Token{
			UID: "uid-1",
			Claims: map[string]interface{}{
				"email":  "jefa.prensa@estadio.test",
				"role":   "area_admin",
				"areaId": "area-1",
			},
		}, nil).Once()

		s, err := NewFirebaseSessionVerifier(m).VerifySession(ctx, "id-token")
		require.NoError(t, err)
		assert.Equal(t, &domain.Session{UID: "uid-1", Email: "jefa.prensa@estadio.test", Role: domain.RoleAreaAdmin, AreaID: "area-1"}, s)
		m.AssertExpectations(t)
	})

	t.Run("Verification failure", func(t *testing.T) {
		m := new(MockIDTokenVerifier)
		m.On("VerifyIDToken", ctx, "bad").Return(nil, errors.New("signature mismatch")).Once()

		_, err := NewFirebaseSessionVerifier(m).VerifySession(ctx, "bad")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("User without role", func(t *testing.T) {
		_, err := SessionFromClaims("uid-2", map[string]interface{}{"role": "fan"})
		assert.ErrorIs(t, err, ErrWrongTokenType)

		_, err = SessionFromClaims("uid-3", map[string]interface{}{"role": 7})
		assert.Error(t, err)
	})
}
