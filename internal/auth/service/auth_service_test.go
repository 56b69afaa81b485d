package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/casadecor/portfolio-backend/config"
)

func newTestService(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{
		AdminPasswordHash: string(hash),
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
	})
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	svc := newTestService(t, "s3cret")

	token, expiresAt, err := svc.Login("s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	assert.NoError(t, svc.Verify(token))
}

func TestAuthService_WrongPassword(t *testing.T) {
	svc := newTestService(t, "s3cret")

	_, _, err := svc.Login("nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_VerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(t, "s3cret")

	assert.ErrorIs(t, svc.Verify("not-a-token"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Verify(""), ErrInvalidCredentials)
}

func TestAuthService_VerifyRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t, "s3cret")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(signed), ErrInvalidCredentials)
}

func TestAuthService_VerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t, "s3cret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(signed), ErrInvalidCredentials)
}

func TestAuthService_Unconfigured(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{})

	assert.False(t, svc.Enabled())
	_, _, err := svc.Login("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, svc.Verify("anything"), ErrNotConfigured)
}
