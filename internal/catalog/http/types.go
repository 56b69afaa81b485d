package http

import (
	"github.com/casadecor/portfolio-backend/internal/catalog/repository"
)

type Handler struct {
	repo *repository.Facade
}

func NewHandler(repo *repository.Facade) *Handler {
	return &Handler{repo: repo}
}
