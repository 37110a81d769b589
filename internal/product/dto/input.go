package dto

import (
	"github.com/shopspring/decimal"

	inventorydto "github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// ProductInput is the complete desired state of a product. Update replaces
// everything the product owns with what is described here.
type ProductInput struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Type        model.ProductType   `json:"type" binding:"required"`
	SKU         *string             `json:"sku"`
	Price       *decimal.Decimal    `json:"price"` // Simple products only
	Status      model.ProductStatus `json:"status"`
	ImageURL    *string             `json:"imageURL"`
	Categories  []string            `json:"categories"`
	Attributes  []AttributeInput    `json:"attributes"`
	Variations  []VariationInput    `json:"variations"` // Variable products only
	Stock       []StockInput        `json:"stock"`      // Simple products only
}

type AttributeInput struct {
	AttributeID      string   `json:"attributeId" binding:"required"`
	UsedForVariation bool     `json:"usedForVariation"`
	Terms            []string `json:"terms"`
}

type VariationInput struct {
	ID       string          `json:"id"` // Existing variant to keep, if any
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	ImageURL *string         `json:"imageURL"`
	Terms    []string        `json:"terms"` // One term per variation attribute
	Stock    []StockInput    `json:"stock"`
}

type StockInput = inventorydto.StockLevelInput

// ProductLookup selects a product by id or, failing that, by sku.
type ProductLookup struct {
	ID  string `form:"id"`
	SKU string `form:"sku"`
}

type SKUCheckQuery struct {
	SKU       string `form:"sku" binding:"required"`
	ExcludeID string `form:"excludeId"`
}
