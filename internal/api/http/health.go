package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/casadecor/portfolio-backend/internal/catalog/repository"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Backend   string    `json:"backend,omitempty"`
	Remote    string    `json:"remote"`
}

type HealthHandler struct {
	serviceName string
	version     string
	backend     string
	probe       *repository.Probe
}

func NewHealthHandler(serviceName, version, backend string, probe *repository.Probe) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		backend:     backend,
		probe:       probe,
	}
}

// HealthCheck reports the memoized remote state rather than pinging; the
// endpoint stays cheap under load-balancer polling.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Backend:   h.backend,
		Remote:    h.probe.State(),
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
