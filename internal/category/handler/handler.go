package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/categories")
	g.GET("", h.ListCategories)
	g.POST("", h.CreateCategory)
	g.GET("/slug-check", h.CheckSlug)
	g.GET("/:id", h.GetCategory)
	g.PUT("/:id", h.UpdateCategory)
	g.DELETE("/:id", h.DeleteCategory)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input dto.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	cat, err := h.uc.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		h.fail(c, "failed to create category", err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	cat, err := h.uc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get category", err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var filters dto.CategoryFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	categories, err := h.uc.ListCategories(c.Request.Context(), &filters)
	if err != nil {
		h.fail(c, "failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var input dto.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	cat, err := h.uc.UpdateCategory(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.fail(c, "failed to update category", err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.uc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "failed to delete category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CategoryHandler) CheckSlug(c *gin.Context) {
	var q dto.SlugCheckQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	taken, err := h.uc.IsSlugTaken(c.Request.Context(), q.Slug, q.ExcludeID)
	if err != nil {
		h.fail(c, "failed to check category slug", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": taken})
}

func (h *CategoryHandler) fail(c *gin.Context, msg string, err error) {
	h.logger.Debug(msg, zap.Error(err))
	httpx.WriteError(c, err)
}
