package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func newTestJWTService() *JWTService {
	return NewJWTService(testSecret, 15*time.Minute, 7*24*time.Hour)
}

func customer() Session {
	return Session{UserID: "user-123", Email: "asha@example.com", Role: RoleCustomer}
}

func TestSession_IsAdmin(t *testing.T) {
	assert.False(t, customer().IsAdmin())
	assert.True(t, Session{UserID: "admin-1", Role: RoleAdmin}.IsAdmin())
	assert.False(t, Session{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Session{}.Authenticated())
}

func TestJWTService_AccessToken_RoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken(customer())
	require.NoError(t, err)
	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, customer(), claims.Session())
	assert.Equal(t, "user-123", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)
}

func TestJWTService_AccessToken_Expired(t *testing.T) {
	service := newTestJWTService()
	service.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := service.GenerateAccessToken(customer())
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_AccessToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_AccessToken_WrongSignature(t *testing.T) {
	other := NewJWTService("another-secret-key-for-testing-purposes", 15*time.Minute, time.Hour)

	token, _, err := other.GenerateAccessToken(customer())
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_AccessToken_NoneAlgorithmRejected(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:    "user-123",
		Role:      RoleAdmin,
		TokenType: tokenTypeAccess,
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RefreshToken_RoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateRefreshToken("user-123", "session-1")
	require.NoError(t, err)
	userID, err := service.ValidateRefreshToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWTService_RefreshToken_Expired(t *testing.T) {
	service := newTestJWTService()
	service.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }

	token, _, err := service.GenerateRefreshToken("user-123", "session-1")
	require.NoError(t, err)

	_, err = service.ValidateRefreshToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	service := newTestJWTService()

	refresh, _, err := service.GenerateRefreshToken("user-123", "session-1")
	require.NoError(t, err)
	access, _, err := service.GenerateAccessToken(customer())
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Expiry(t *testing.T) {
	service := NewJWTService(testSecret, 30*time.Minute, 14*24*time.Hour)

	assert.Equal(t, 30*time.Minute, service.AccessTokenExpiry())
	assert.Equal(t, 14*24*time.Hour, service.RefreshTokenExpiry())
}
