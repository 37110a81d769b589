package dto

import (
	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// ProductDetail is the fully joined view of one product.
type ProductDetail struct {
	model.Product
	Categories []model.Category  `json:"categories"`
	Attributes []AttributeDetail `json:"attributes"`
}

type AttributeDetail struct {
	model.Attribute
	UsedForVariation bool         `json:"usedForVariation"`
	Terms            []model.Term `json:"terms"`
}

// ProductSummary is one row of the product list.
type ProductSummary struct {
	model.Product
	Categories       []model.Category `json:"categories"`
	VariantCount     int              `json:"variantCount"`
	TotalStock       int64            `json:"totalStock"`
	StockUnlimited   bool             `json:"stockUnlimited"`
	VariableMinPrice decimal.Decimal  `json:"variableMinPrice"`
	VariableMaxPrice decimal.Decimal  `json:"variableMaxPrice"`
}
