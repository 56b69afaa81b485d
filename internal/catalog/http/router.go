package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the read-only catalog routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/featured", h.listFeatured)
	rg.GET("/recent", h.listRecent)
}

// RegisterAdmin attaches the write routes; the caller wraps the group in
// auth middleware.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/projects", h.create)
	rg.PATCH("/projects/:id", h.update)
	rg.DELETE("/projects/:id", h.delete)
	rg.POST("/images", h.uploadImage)
}
