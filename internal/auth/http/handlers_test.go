package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/casadecor/portfolio-backend/config"
	"github.com/casadecor/portfolio-backend/internal/auth/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	h := NewHandler(service.NewAuthService(config.AuthConfig{
		AdminPasswordHash: string(hash),
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
	}))

	r := gin.New()
	h.Register(r.Group("/api/v1/auth"))
	return r, h
}

func postLogin(r *gin.Engine, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postLogin(r, "s3cret")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK        bool   `json:"ok"`
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.Token)
	_, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postLogin(r, "nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestLogin_EmptyBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	r, h := newTestRouter(t)
	// tiny bucket so the limit trips inside the test
	h.limiter = rate.NewLimiter(rate.Every(time.Hour), 2)

	assert.Equal(t, http.StatusUnauthorized, postLogin(r, "nope").Code)
	assert.Equal(t, http.StatusUnauthorized, postLogin(r, "nope").Code)
	assert.Equal(t, http.StatusTooManyRequests, postLogin(r, "nope").Code)
}

func TestLogin_Unconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(service.NewAuthService(config.AuthConfig{}))
	r := gin.New()
	h.Register(r.Group("/api/v1/auth"))

	w := postLogin(r, "anything")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
