package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casadecor/portfolio-backend/internal/catalog/repository"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler("portfolio-backend", "dev", "", repository.NewProbe(nil))
	r := gin.New()
	h.RegisterRoutes(r)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "portfolio-backend", resp.Service)
		assert.Equal(t, "unconfigured", resp.Remote)
		assert.False(t, resp.Timestamp.IsZero())
	}
}
