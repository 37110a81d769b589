package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/attribute/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

type AttributeHandler struct {
	uc     attribute.UseCase
	logger logger.ZapLogger
}

func NewAttributeHandler(uc attribute.UseCase, log logger.ZapLogger) *AttributeHandler {
	return &AttributeHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AttributeHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/attributes")
	g.GET("", h.ListAttributes)
	g.POST("", h.CreateAttribute)
	g.GET("/slug-check", h.CheckAttributeSlug)
	g.GET("/:id", h.GetAttribute)
	g.PUT("/:id", h.UpdateAttribute)
	g.DELETE("/:id", h.DeleteAttribute)

	g.GET("/:id/terms", h.ListTerms)
	g.POST("/:id/terms", h.CreateTerm)
	g.GET("/:id/terms/slug-check", h.CheckTermSlug)
	g.PUT("/:id/terms/:termId", h.UpdateTerm)
	g.DELETE("/:id/terms/:termId", h.DeleteTerm)
}

func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	var input dto.AttributeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	a, err := h.uc.CreateAttribute(c.Request.Context(), &input)
	if err != nil {
		h.fail(c, "failed to create attribute", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	a, err := h.uc.GetAttribute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get attribute", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AttributeHandler) ListAttributes(c *gin.Context) {
	attributes, err := h.uc.ListAttributes(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list attributes", err)
		return
	}
	c.JSON(http.StatusOK, attributes)
}

func (h *AttributeHandler) UpdateAttribute(c *gin.Context) {
	var input dto.AttributeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	a, err := h.uc.UpdateAttribute(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.fail(c, "failed to update attribute", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AttributeHandler) DeleteAttribute(c *gin.Context) {
	if err := h.uc.DeleteAttribute(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "failed to delete attribute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AttributeHandler) CheckAttributeSlug(c *gin.Context) {
	var q dto.SlugCheckQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	taken, err := h.uc.IsAttributeSlugTaken(c.Request.Context(), q.Slug, q.ExcludeID)
	if err != nil {
		h.fail(c, "failed to check attribute slug", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": taken})
}

func (h *AttributeHandler) CreateTerm(c *gin.Context) {
	var input dto.TermInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	t, err := h.uc.CreateTerm(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.fail(c, "failed to create term", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *AttributeHandler) ListTerms(c *gin.Context) {
	terms, err := h.uc.ListTerms(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to list terms", err)
		return
	}
	c.JSON(http.StatusOK, terms)
}

func (h *AttributeHandler) UpdateTerm(c *gin.Context) {
	var input dto.TermInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	t, err := h.uc.UpdateTerm(c.Request.Context(), c.Param("id"), c.Param("termId"), &input)
	if err != nil {
		h.fail(c, "failed to update term", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *AttributeHandler) DeleteTerm(c *gin.Context) {
	if err := h.uc.DeleteTerm(c.Request.Context(), c.Param("id"), c.Param("termId")); err != nil {
		h.fail(c, "failed to delete term", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AttributeHandler) CheckTermSlug(c *gin.Context) {
	var q dto.SlugCheckQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	taken, err := h.uc.IsTermSlugTaken(c.Request.Context(), c.Param("id"), q.Slug, q.ExcludeID)
	if err != nil {
		h.fail(c, "failed to check term slug", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": taken})
}

func (h *AttributeHandler) fail(c *gin.Context, msg string, err error) {
	h.logger.Debug(msg, zap.Error(err))
	httpx.WriteError(c, err)
}
