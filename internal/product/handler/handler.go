package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/products", h.CreateProduct)
	rg.GET("/products", h.GetProducts)
	rg.GET("/products/sku-check", h.CheckSKU)
	rg.PUT("/products/:id", h.UpdateProduct)
	rg.DELETE("/products/:id", h.DeleteProduct)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input dto.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	detail, err := h.uc.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		h.fail(c, "failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// GetProducts lists summaries, or returns one product when ?id or ?sku is set.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var lookup dto.ProductLookup
	if err := c.ShouldBindQuery(&lookup); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	if lookup.ID != "" || lookup.SKU != "" {
		detail, err := h.uc.GetProduct(c.Request.Context(), lookup)
		if err != nil {
			h.fail(c, "failed to get product", err)
			return
		}
		c.JSON(http.StatusOK, detail)
		return
	}

	summaries, err := h.uc.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list products", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input dto.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	detail, err := h.uc.UpdateProduct(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.fail(c, "failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.uc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "failed to delete product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ProductHandler) CheckSKU(c *gin.Context) {
	var q dto.SKUCheckQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	available, err := h.uc.IsSKUAvailable(c.Request.Context(), q.SKU, q.ExcludeID)
	if err != nil {
		h.fail(c, "failed to check sku", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": !available, "available": available})
}

func (h *ProductHandler) fail(c *gin.Context, msg string, err error) {
	h.logger.Debug(msg, zap.Error(err))
	httpx.WriteError(c, err)
}
