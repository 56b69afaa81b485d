package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/casadecor/portfolio-backend/internal/auth/service"
)

type Handler struct {
	auth *service.AuthService
	// one shared limiter across all clients; the admin surface has a single
	// legitimate user, so per-IP buckets buy nothing
	limiter *rate.Limiter
}

func NewHandler(auth *service.AuthService) *Handler {
	return &Handler{
		auth:    auth,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

// Register attaches auth routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
}

type loginReq struct {
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	if !h.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many login attempts"})
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	token, expiresAt, err := h.auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "admin access is not configured"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}
