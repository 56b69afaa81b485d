package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
	"github.com/casadecor/portfolio-backend/internal/catalog/localstore"
)

func (h *Handler) list(c *gin.Context) {
	projects, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

func (h *Handler) listFeatured(c *gin.Context) {
	projects, err := h.repo.ListFeatured(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

func (h *Handler) listRecent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	projects, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

// create accepts either a JSON body or a multipart form with a "project"
// JSON field plus an optional "image" file.
func (h *Handler) create(c *gin.Context) {
	in, img, err := bindCreate(c)
	if err != nil {
		if errors.Is(err, domain.ErrImageTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), in, img)
	if err != nil {
		if errors.Is(err, domain.ErrImageTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")

	var in domain.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	p, err := h.repo.Update(c.Request.Context(), id, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) uploadImage(c *gin.Context) {
	img, err := readImageFile(c, "image")
	if err != nil {
		if errors.Is(err, domain.ErrImageTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if img == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "image file is required"})
		return
	}

	ref, err := h.repo.StoreImage(c.Request.Context(), img.Filename, img.Data)
	if err != nil {
		if errors.Is(err, domain.ErrImageTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "ref": ref})
}

func bindCreate(c *gin.Context) (domain.CreateInput, *domain.ImageUpload, error) {
	var in domain.CreateInput

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		raw := c.PostForm("project")
		if raw == "" {
			return in, nil, errors.New("multipart form needs a project field")
		}
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return in, nil, errors.New("invalid project field")
		}
		img, err := readImageFile(c, "image")
		if err != nil {
			return in, nil, err
		}
		return in, img, nil
	}

	if err := c.ShouldBindJSON(&in); err != nil {
		return in, nil, errors.New("invalid body")
	}
	return in, nil, nil
}

// readImageFile returns nil without error when the form has no such file.
func readImageFile(c *gin.Context, field string) (*domain.ImageUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("invalid multipart form")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("unreadable image file")
	}
	defer f.Close()

	// one byte past the cap is enough to tell "too large" from "at the cap"
	data, err := io.ReadAll(io.LimitReader(f, localstore.MaxImageBytes+1))
	if err != nil {
		return nil, errors.New("unreadable image file")
	}
	// reject here so no store path ever sees a truncated payload
	if len(data) > localstore.MaxImageBytes {
		return nil, fmt.Errorf("%w: %s", domain.ErrImageTooLarge, fh.Filename)
	}
	return &domain.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
