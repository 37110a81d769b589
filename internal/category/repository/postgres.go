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

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, organization_id, parent_id, name, slug, image_url, created_at, updated_at)
        VALUES (:id, :organization_id, :parent_id, :name, :slug, :image_url, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, c)
	return slugError(err, c.Slug)
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.Category, error) {
	if !database.ValidID(id) {
		return nil, nil
	}
	var category model.Category
	query := `SELECT * FROM categories WHERE organization_id = $1 AND id = $2 LIMIT 1`
	err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &category, query, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, orgID string) ([]model.Category, error) {
	var categories []model.Category
	query := `SELECT * FROM categories WHERE organization_id = $1 ORDER BY name ASC`
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &categories, query, orgID); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, orgID string, ids []string) ([]model.Category, error) {
	ids = database.ValidIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(`SELECT * FROM categories WHERE organization_id = ? AND id IN (?) ORDER BY name ASC`, orgID, ids)
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	if err := sqlx.SelectContext(ctx, exec, &categories, exec.Rebind(query), args...); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            slug = :slug,
            image_url = :image_url,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, c)
	return slugError(err, c.Slug)
}

// Delete relies on the caller having checked HasChildren; the parent_id
// foreign key is RESTRICT so a race surfaces as an error, not orphans.
func (r *PGRepository) Delete(ctx context.Context, orgID, id string) error {
	_, err := database.Executor(ctx, r.DB).ExecContext(ctx,
		`DELETE FROM categories WHERE organization_id = $1 AND id = $2`, orgID, id)
	return err
}

func (r *PGRepository) IsSlugTaken(ctx context.Context, orgID, slug, excludeID string) (bool, error) {
	var found bool
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE organization_id = $1 AND slug = $2 AND id::text <> $3)`
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &found, query, orgID, slug, excludeID); err != nil {
		return false, err
	}
	return found, nil
}

func (r *PGRepository) HasChildren(ctx context.Context, orgID, id string) (bool, error) {
	var found bool
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE organization_id = $1 AND parent_id = $2)`
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &found, query, orgID, id); err != nil {
		return false, err
	}
	return found, nil
}

func slugError(err error, slug string) error {
	if database.IsUniqueViolation(err) {
		return apperr.Validation("slug %q already exists", slug)
	}
	return err
}
