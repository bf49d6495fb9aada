// en internal/category/infra/inbound/http/category_handler.go
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mroldan/taskdeck/internal/category/application"
	categoryDomain "github.com/mroldan/taskdeck/internal/category/domain"
	"github.com/mroldan/taskdeck/pkg/utils"
)

// CategoryHandler encapsula los endpoints HTTP relacionados con Category.
type CategoryHandler struct {
	service *application.CategoryService
}

// NewCategoryHandler crea un nuevo CategoryHandler.
func NewCategoryHandler(service *application.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateCategory endpoint POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color" binding:"required"` // hex, ej: #ff8800
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, categoryDomain.ErrCategoryExists):
			utils.SendConflict(c, err.Error())
		case errors.Is(err, categoryDomain.ErrInvalidCategory), errors.Is(err, categoryDomain.ErrInvalidColor):
			utils.SendBadRequest(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusCreated, category)
}

// GetCategory endpoint GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid category id")
		return
	}

	category, err := h.service.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, categoryDomain.ErrCategoryNotFound) {
			utils.SendNotFound(c, "category not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, category)
}

// ListCategories endpoint GET /categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, categories)
}

// UpdateCategory endpoint PUT /categories/:id
// Renombrar arrastra en cascada las tareas asociadas; la respuesta incluye
// cuántas tareas se movieron.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid category id")
		return
	}

	var req struct {
		Name  *string `json:"name,omitempty"`
		Color *string `json:"color,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	category, moved, err := h.service.UpdateCategory(c.Request.Context(), id, req.Name, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, categoryDomain.ErrCategoryNotFound):
			utils.SendNotFound(c, "category not found")
		case errors.Is(err, categoryDomain.ErrCategoryExists):
			utils.SendConflict(c, err.Error())
		case errors.Is(err, categoryDomain.ErrInvalidCategory), errors.Is(err, categoryDomain.ErrInvalidColor):
			utils.SendBadRequest(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"category":   category,
		"tasksMoved": moved,
	})
}

// DeleteCategory endpoint DELETE /categories/:id
// Una categoría con tareas asociadas no se puede borrar: 409.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid category id")
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, categoryDomain.ErrCategoryNotFound):
			utils.SendNotFound(c, "category not found")
		case errors.Is(err, categoryDomain.ErrCategoryInUse):
			utils.SendConflict(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Stats endpoint GET /categories/stats
func (h *CategoryHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, stats)
}
