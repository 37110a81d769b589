package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository persists a product and every row it owns. Methods taking an
// orgID never touch rows of another tenant.
type Repository interface {
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, orgID, id string) error
	FindByID(ctx context.Context, orgID, id string) (*model.Product, error)
	FindBySKU(ctx context.Context, orgID, sku string) (*model.Product, error)
	FindAll(ctx context.Context, orgID string) ([]model.Product, error)
	// IsSKUTaken reports whether another product, or a variant of another
	// product, already carries sku.
	IsSKUTaken(ctx context.Context, orgID, sku, excludeProductID string) (bool, error)
	Aggregates(ctx context.Context, orgID string) ([]model.ProductAggregate, error)

	ListCategoryAssignments(ctx context.Context, orgID string, productIDs []string) ([]model.CategoryAssignment, error)
	AddCategories(ctx context.Context, rows []model.CategoryAssignment) error
	RemoveCategories(ctx context.Context, orgID, productID string, categoryIDs []string) error

	ListAttributeAssignments(ctx context.Context, orgID, productID string) ([]model.AttributeAssignment, error)
	SaveAttributeAssignment(ctx context.Context, a *model.AttributeAssignment) error
	RemoveAttributeAssignments(ctx context.Context, orgID, productID string, attributeIDs []string) error

	ListProductTerms(ctx context.Context, orgID, productID string) ([]model.ProductTerm, error)
	AddProductTerms(ctx context.Context, rows []model.ProductTerm) error
	RemoveProductTerms(ctx context.Context, orgID, productID string, termIDs []string) error

	// DeleteAssociations drops every category, attribute and term link of the product.
	DeleteAssociations(ctx context.Context, orgID, productID string) error

	ListVariants(ctx context.Context, orgID, productID string) ([]model.Variant, error)
	FindVariantByID(ctx context.Context, orgID, id string) (*model.Variant, error)
	FindVariantBySKU(ctx context.Context, orgID, sku string) (*model.Variant, error)
	CreateVariant(ctx context.Context, v *model.Variant) error
	UpdateVariant(ctx context.Context, v *model.Variant) error
	DeleteVariants(ctx context.Context, orgID string, ids []string) error

	ListVariantTerms(ctx context.Context, orgID string, variantIDs []string) ([]model.VariantTerm, error)
	SaveVariantTerm(ctx context.Context, t *model.VariantTerm) error
	RemoveVariantTerms(ctx context.Context, orgID, variantID string, attributeIDs []string) error
	DeleteVariantTermsByVariantIDs(ctx context.Context, orgID string, variantIDs []string) error
}

// AttributeLookup is the slice of the term registry the synchronizer reads.
type AttributeLookup interface {
	FindAttributesByIDs(ctx context.Context, orgID string, ids []string) ([]model.Attribute, error)
	FindTermsByIDs(ctx context.Context, orgID string, ids []string) ([]model.Term, error)
}

type CategoryLookup interface {
	FindByIDs(ctx context.Context, orgID string, ids []string) ([]model.Category, error)
}
