// Package service issues and verifies admin session tokens. There is a
// single admin identity: a bcrypt hash of the admin password is configured
// in the environment and a successful login yields a signed JWT.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/casadecor/portfolio-backend/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotConfigured      = errors.New("admin authentication is not configured")
)

const tokenSubject = "admin"

type AuthService struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		passwordHash: []byte(cfg.AdminPasswordHash),
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.TokenTTL,
	}
}

// Enabled reports whether an admin password hash is configured. When it is
// not, every admin route rejects with 503 rather than 401.
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

// Login checks the password against the configured hash and returns a signed
// token plus its expiry. bcrypt comparison is constant time for a given hash.
func (s *AuthService) Login(password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrNotConfigured
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   tokenSubject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token issued by Login.
func (s *AuthService) Verify(tokenString string) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != tokenSubject {
		return ErrInvalidCredentials
	}
	return nil
}
