package model

import (
	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
)

func (t ProductType) Valid() bool {
	return t == ProductTypeSimple || t == ProductTypeVariable
}

type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusArchived:
		return true
	}
	return false
}

type Product struct {
	BaseModel
	OrganizationID string              `db:"organization_id" json:"organizationId"`
	Name           string              `db:"name" json:"name"`
	Description    string              `db:"description" json:"description"`
	Type           ProductType         `db:"type" json:"type"`
	SKU            *string             `db:"sku" json:"sku,omitempty"`
	Price          decimal.NullDecimal `db:"price" json:"price"` // Only meaningful for simple products
	Status         ProductStatus       `db:"status" json:"status"`
	ImageURL       *string             `db:"image_url" json:"imageURL,omitempty"`
	Variants       []Variant           `db:"-" json:"variants,omitempty"` // Not in DB table directly
}

type Variant struct {
	BaseModel
	ProductID      string          `db:"product_id" json:"productId"`
	OrganizationID string          `db:"organization_id" json:"organizationId"`
	SKU            string          `db:"sku" json:"sku"`
	Price          decimal.Decimal `db:"price" json:"price"`
	ImageURL       *string         `db:"image_url" json:"imageURL,omitempty"`
	Position       int             `db:"position" json:"-"`
	Terms          []VariantTerm   `db:"-" json:"terms"`
	Stock          []StockRecord   `db:"-" json:"stock"`
}

type CategoryAssignment struct {
	ProductID      string `db:"product_id"`
	CategoryID     string `db:"category_id"`
	OrganizationID string `db:"organization_id"`
}

type AttributeAssignment struct {
	ProductID        string `db:"product_id"`
	AttributeID      string `db:"attribute_id"`
	OrganizationID   string `db:"organization_id"`
	UsedForVariation bool   `db:"used_for_variation"`
	Position         int    `db:"position"`
}

type ProductTerm struct {
	ProductID      string `db:"product_id"`
	AttributeID    string `db:"attribute_id"`
	TermID         string `db:"term_id"`
	OrganizationID string `db:"organization_id"`
}

type VariantTerm struct {
	VariantID      string `db:"variant_id" json:"-"`
	AttributeID    string `db:"attribute_id" json:"attributeId"`
	TermID         string `db:"term_id" json:"termId"`
	OrganizationID string `db:"organization_id" json:"-"`
}

// ProductAggregate holds per-product facts computed by the store for list views.
type ProductAggregate struct {
	ProductID    string              `db:"product_id"`
	VariantCount int                 `db:"variant_count"`
	MinPrice     decimal.NullDecimal `db:"min_price"`
	MaxPrice     decimal.NullDecimal `db:"max_price"`
	ManagedStock int64               `db:"managed_stock"`
	HasUnlimited bool                `db:"has_unlimited"`
}
