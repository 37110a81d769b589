package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/products/stock", h.UpsertStock)
	rg.GET("/products/stock", h.ListVariantStock)
}

func (h *InventoryHandler) UpsertStock(c *gin.Context) {
	var input dto.StockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	rec, err := h.uc.UpsertStock(c.Request.Context(), &input)
	if err != nil {
		h.logger.Debug("failed to upsert stock", zap.Error(err))
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *InventoryHandler) ListVariantStock(c *gin.Context) {
	var q dto.StockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.WriteBindError(c, err)
		return
	}
	records, err := h.uc.ListVariantStock(c.Request.Context(), q.VariantID)
	if err != nil {
		h.logger.Debug("failed to list stock", zap.Error(err))
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
