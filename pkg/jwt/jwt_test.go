package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	service := NewService("test-secret-key")

	assert.NotNil(t, service)
	assert.Equal(t, []byte("test-secret-key"), service.secretKey)
	assert.Equal(t, DefaultTTL, service.TTL())
}

func TestWithTTL(t *testing.T) {
	service := NewService("k").WithTTL(15 * time.Minute)
	assert.Equal(t, 15*time.Minute, service.TTL())

	service.WithTTL(0)
	assert.Equal(t, 15*time.Minute, service.TTL())
}

func TestGenerateAndValidateToken_RoundTrip(t *testing.T) {
	service := NewService("test-secret-key")

	token, err := service.GenerateToken("user-456", "teacher")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "user-456", claims.Subject)
	assert.Equal(t, "teacher", claims.Role)
	assert.True(t, time.Now().Before(claims.ExpiresAt.Time))
}

func TestSign_CarriesSessionAndEmail(t *testing.T) {
	service := NewService("test-secret-key")

	token, expiresAt, err := service.Sign(Claims{UserID: "u1", Email: "noah@example.com", Role: "child", SessionID: "s1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), expiresAt, 5*time.Second)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "noah@example.com", claims.Email)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestValidateToken_Invalid(t *testing.T) {
	service := NewService("test-secret-key")

	_, err := service.ValidateToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewService("secret-key-1").GenerateToken("user-123", "child")
	require.NoError(t, err)

	_, err = NewService("secret-key-2").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	service := NewService("test-secret-key")
	service.ttl = -time.Minute

	token, err := service.GenerateToken("user-123", "child")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
