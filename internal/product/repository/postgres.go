package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/database"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, organization_id, name, description, type, sku, price,
            status, image_url, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :name, :description, :type, :sku, :price,
            :status, :image_url, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, p)
	return skuError(err, p.SKU)
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            description = :description,
            type = :type,
            sku = :sku,
            price = :price,
            status = :status,
            image_url = :image_url,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, p)
	return skuError(err, p.SKU)
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id string) error {
	_, err := database.Executor(ctx, r.DB).ExecContext(ctx,
		`DELETE FROM products WHERE organization_id = $1 AND id = $2`, orgID, id)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.Product, error) {
	if !database.ValidID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT * FROM products WHERE organization_id = $1 AND id = $2 LIMIT 1`, orgID, id)
}

func (r *PGRepository) FindBySKU(ctx context.Context, orgID, sku string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT * FROM products WHERE organization_id = $1 AND sku = $2 LIMIT 1`, orgID, sku)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...any) (*model.Product, error) {
	var p model.Product
	err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &p, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, orgID string) ([]model.Product, error) {
	var products []model.Product
	query := `SELECT * FROM products WHERE organization_id = $1 ORDER BY created_at DESC, id`
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &products, query, orgID); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) IsSKUTaken(ctx context.Context, orgID, sku, excludeProductID string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM products
            WHERE organization_id = $1 AND sku = $2 AND id::text <> $3
        ) OR EXISTS (
            SELECT 1 FROM product_variants
            WHERE organization_id = $1 AND sku = $2 AND product_id::text <> $3
        )
    `
	var taken bool
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &taken, query, orgID, sku, excludeProductID); err != nil {
		return false, err
	}
	return taken, nil
}

// Aggregates computes per-product list facts in one pass. Unmanaged rows
// carry the sentinel level, so they are flagged rather than summed.
func (r *PGRepository) Aggregates(ctx context.Context, orgID string) ([]model.ProductAggregate, error) {
	query := `
        SELECT p.id AS product_id,
               COUNT(DISTINCT v.id) AS variant_count,
               MIN(v.price) AS min_price,
               MAX(v.price) AS max_price,
               COALESCE(SUM(s.stock_level) FILTER (WHERE s.manage_stock), 0)::BIGINT AS managed_stock,
               COALESCE(BOOL_OR(NOT s.manage_stock), FALSE) AS has_unlimited
        FROM products p
        LEFT JOIN product_variants v ON v.product_id = p.id
        LEFT JOIN stock_records s ON s.variant_id = v.id
        WHERE p.organization_id = $1
        GROUP BY p.id
    `
	var out []model.ProductAggregate
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &out, query, orgID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListCategoryAssignments(ctx context.Context, orgID string, productIDs []string) ([]model.CategoryAssignment, error) {
	productIDs = database.ValidIDs(productIDs)
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []model.CategoryAssignment
	err := r.selectIn(ctx, &rows, `
        SELECT product_id, category_id, organization_id FROM product_categories
        WHERE organization_id = ? AND product_id IN (?)
    `, orgID, productIDs)
	return rows, err
}

func (r *PGRepository) AddCategories(ctx context.Context, rows []model.CategoryAssignment) error {
	if len(rows) == 0 {
		return nil
	}
	query := `
        INSERT INTO product_categories (product_id, category_id, organization_id)
        VALUES (:product_id, :category_id, :organization_id)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, rows)
	return err
}

func (r *PGRepository) RemoveCategories(ctx context.Context, orgID, productID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	return r.execIn(ctx, `
        DELETE FROM product_categories
        WHERE organization_id = ? AND product_id = ? AND category_id IN (?)
    `, orgID, productID, categoryIDs)
}

func (r *PGRepository) ListAttributeAssignments(ctx context.Context, orgID, productID string) ([]model.AttributeAssignment, error) {
	var rows []model.AttributeAssignment
	query := `
        SELECT product_id, attribute_id, organization_id, used_for_variation, position
        FROM product_attributes
        WHERE organization_id = $1 AND product_id = $2
        ORDER BY position
    `
	err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &rows, query, orgID, productID)
	return rows, err
}

func (r *PGRepository) SaveAttributeAssignment(ctx context.Context, a *model.AttributeAssignment) error {
	query := `
        INSERT INTO product_attributes (product_id, attribute_id, organization_id, used_for_variation, position)
        VALUES (:product_id, :attribute_id, :organization_id, :used_for_variation, :position)
        ON CONFLICT (product_id, attribute_id) DO UPDATE
        SET used_for_variation = EXCLUDED.used_for_variation,
            position = EXCLUDED.position
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, a)
	return err
}

func (r *PGRepository) RemoveAttributeAssignments(ctx context.Context, orgID, productID string, attributeIDs []string) error {
	if len(attributeIDs) == 0 {
		return nil
	}
	return r.execIn(ctx, `
        DELETE FROM product_attributes
        WHERE organization_id = ? AND product_id = ? AND attribute_id IN (?)
    `, orgID, productID, attributeIDs)
}

func (r *PGRepository) ListProductTerms(ctx context.Context, orgID, productID string) ([]model.ProductTerm, error) {
	var rows []model.ProductTerm
	query := `
        SELECT product_id, attribute_id, term_id, organization_id
        FROM product_terms
        WHERE organization_id = $1 AND product_id = $2
    `
	err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &rows, query, orgID, productID)
	return rows, err
}

func (r *PGRepository) AddProductTerms(ctx context.Context, rows []model.ProductTerm) error {
	if len(rows) == 0 {
		return nil
	}
	query := `
        INSERT INTO product_terms (product_id, attribute_id, term_id, organization_id)
        VALUES (:product_id, :attribute_id, :term_id, :organization_id)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, rows)
	return err
}

func (r *PGRepository) RemoveProductTerms(ctx context.Context, orgID, productID string, termIDs []string) error {
	if len(termIDs) == 0 {
		return nil
	}
	return r.execIn(ctx, `
        DELETE FROM product_terms
        WHERE organization_id = ? AND product_id = ? AND term_id IN (?)
    `, orgID, productID, termIDs)
}

func (r *PGRepository) DeleteAssociations(ctx context.Context, orgID, productID string) error {
	exec := database.Executor(ctx, r.DB)
	for _, query := range []string{
		`DELETE FROM product_categories WHERE organization_id = $1 AND product_id = $2`,
		`DELETE FROM product_attributes WHERE organization_id = $1 AND product_id = $2`,
		`DELETE FROM product_terms WHERE organization_id = $1 AND product_id = $2`,
	} {
		if _, err := exec.ExecContext(ctx, query, orgID, productID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) ListVariants(ctx context.Context, orgID, productID string) ([]model.Variant, error) {
	var variants []model.Variant
	query := `
        SELECT * FROM product_variants
        WHERE organization_id = $1 AND product_id = $2
        ORDER BY position, created_at
    `
	err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &variants, query, orgID, productID)
	return variants, err
}

func (r *PGRepository) FindVariantByID(ctx context.Context, orgID, id string) (*model.Variant, error) {
	if !database.ValidID(id) {
		return nil, nil
	}
	return r.findVariant(ctx, `SELECT * FROM product_variants WHERE organization_id = $1 AND id = $2 LIMIT 1`, orgID, id)
}

func (r *PGRepository) FindVariantBySKU(ctx context.Context, orgID, sku string) (*model.Variant, error) {
	return r.findVariant(ctx, `
        SELECT * FROM product_variants
        WHERE organization_id = $1 AND sku = $2
        ORDER BY created_at
        LIMIT 1
    `, orgID, sku)
}

func (r *PGRepository) findVariant(ctx context.Context, query string, args ...any) (*model.Variant, error) {
	var v model.Variant
	err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &v, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) CreateVariant(ctx context.Context, v *model.Variant) error {
	query := `
        INSERT INTO product_variants (
            id, product_id, organization_id, sku, price, image_url, position, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :organization_id, :sku, :price, :image_url, :position, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, v)
	return err
}

func (r *PGRepository) UpdateVariant(ctx context.Context, v *model.Variant) error {
	query := `
        UPDATE product_variants
        SET sku = :sku,
            price = :price,
            image_url = :image_url,
            position = :position,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, v)
	return err
}

func (r *PGRepository) DeleteVariants(ctx context.Context, orgID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.execIn(ctx, `DELETE FROM product_variants WHERE organization_id = ? AND id IN (?)`, orgID, ids)
}

func (r *PGRepository) ListVariantTerms(ctx context.Context, orgID string, variantIDs []string) ([]model.VariantTerm, error) {
	variantIDs = database.ValidIDs(variantIDs)
	if len(variantIDs) == 0 {
		return nil, nil
	}
	var rows []model.VariantTerm
	err := r.selectIn(ctx, &rows, `
        SELECT variant_id, attribute_id, term_id, organization_id FROM variant_terms
        WHERE organization_id = ? AND variant_id IN (?)
    `, orgID, variantIDs)
	return rows, err
}

func (r *PGRepository) SaveVariantTerm(ctx context.Context, t *model.VariantTerm) error {
	query := `
        INSERT INTO variant_terms (variant_id, attribute_id, term_id, organization_id)
        VALUES (:variant_id, :attribute_id, :term_id, :organization_id)
        ON CONFLICT (variant_id, attribute_id) DO UPDATE
        SET term_id = EXCLUDED.term_id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, t)
	return err
}

func (r *PGRepository) RemoveVariantTerms(ctx context.Context, orgID, variantID string, attributeIDs []string) error {
	if len(attributeIDs) == 0 {
		return nil
	}
	return r.execIn(ctx, `
        DELETE FROM variant_terms
        WHERE organization_id = ? AND variant_id = ? AND attribute_id IN (?)
    `, orgID, variantID, attributeIDs)
}

func (r *PGRepository) DeleteVariantTermsByVariantIDs(ctx context.Context, orgID string, variantIDs []string) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return r.execIn(ctx, `DELETE FROM variant_terms WHERE organization_id = ? AND variant_id IN (?)`, orgID, variantIDs)
}

func (r *PGRepository) selectIn(ctx context.Context, dest any, query string, args ...any) error {
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, exec, dest, exec.Rebind(query), args...)
}

func (r *PGRepository) execIn(ctx context.Context, query string, args ...any) error {
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, exec.Rebind(query), args...)
	return err
}

func skuError(err error, sku *string) error {
	if database.IsUniqueViolation(err) && sku != nil {
		return apperr.Validation("sku %q is already in use", *sku)
	}
	return err
}
