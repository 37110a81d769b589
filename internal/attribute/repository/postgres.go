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

func (r *PGRepository) CreateAttribute(ctx context.Context, a *model.Attribute) error {
	query := `
        INSERT INTO attributes (id, organization_id, name, slug, created_at, updated_at)
        VALUES (:id, :organization_id, :name, :slug, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, a)
	return slugError(err, a.Slug)
}

func (r *PGRepository) FindAttributeByID(ctx context.Context, orgID, id string) (*model.Attribute, error) {
	if !database.ValidID(id) {
		return nil, nil
	}
	var a model.Attribute
	query := `SELECT * FROM attributes WHERE organization_id = $1 AND id = $2 LIMIT 1`
	err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &a, query, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) FindAttributes(ctx context.Context, orgID string) ([]model.Attribute, error) {
	var attributes []model.Attribute
	query := `SELECT * FROM attributes WHERE organization_id = $1 ORDER BY name ASC`
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &attributes, query, orgID); err != nil {
		return nil, err
	}
	return attributes, nil
}

func (r *PGRepository) FindAttributesByIDs(ctx context.Context, orgID string, ids []string) ([]model.Attribute, error) {
	ids = database.ValidIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(`SELECT * FROM attributes WHERE organization_id = ? AND id IN (?)`, orgID, ids)
	if err != nil {
		return nil, err
	}
	var attributes []model.Attribute
	if err := sqlx.SelectContext(ctx, exec, &attributes, exec.Rebind(query), args...); err != nil {
		return nil, err
	}
	return attributes, nil
}

func (r *PGRepository) UpdateAttribute(ctx context.Context, a *model.Attribute) error {
	query := `
        UPDATE attributes
        SET name = :name,
            slug = :slug,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, a)
	return slugError(err, a.Slug)
}

// DeleteAttribute removes the attribute; its terms go with it through the
// foreign key cascade.
func (r *PGRepository) DeleteAttribute(ctx context.Context, orgID, id string) error {
	_, err := database.Executor(ctx, r.DB).ExecContext(ctx,
		`DELETE FROM attributes WHERE organization_id = $1 AND id = $2`, orgID, id)
	return err
}

func (r *PGRepository) IsAttributeSlugTaken(ctx context.Context, orgID, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM attributes WHERE organization_id = $1 AND slug = $2 AND id::text <> $3)`
	return r.exists(ctx, query, orgID, slug, excludeID)
}

func (r *PGRepository) IsAttributeInUse(ctx context.Context, orgID, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM product_attributes WHERE organization_id = $1 AND attribute_id = $2)`
	return r.exists(ctx, query, orgID, id)
}

func (r *PGRepository) CreateTerm(ctx context.Context, t *model.Term) error {
	query := `
        INSERT INTO terms (id, organization_id, attribute_id, name, slug, created_at, updated_at)
        VALUES (:id, :organization_id, :attribute_id, :name, :slug, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, t)
	return slugError(err, t.Slug)
}

func (r *PGRepository) FindTermByID(ctx context.Context, orgID, id string) (*model.Term, error) {
	if !database.ValidID(id) {
		return nil, nil
	}
	var t model.Term
	query := `SELECT * FROM terms WHERE organization_id = $1 AND id = $2 LIMIT 1`
	err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &t, query, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) FindTerms(ctx context.Context, orgID, attributeID string) ([]model.Term, error) {
	var terms []model.Term
	query := `SELECT * FROM terms WHERE organization_id = $1 AND attribute_id = $2 ORDER BY name ASC`
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &terms, query, orgID, attributeID); err != nil {
		return nil, err
	}
	return terms, nil
}

func (r *PGRepository) FindTermsByIDs(ctx context.Context, orgID string, ids []string) ([]model.Term, error) {
	ids = database.ValidIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(`SELECT * FROM terms WHERE organization_id = ? AND id IN (?) ORDER BY name ASC`, orgID, ids)
	if err != nil {
		return nil, err
	}
	var terms []model.Term
	if err := sqlx.SelectContext(ctx, exec, &terms, exec.Rebind(query), args...); err != nil {
		return nil, err
	}
	return terms, nil
}

func (r *PGRepository) UpdateTerm(ctx context.Context, t *model.Term) error {
	query := `
        UPDATE terms
        SET name = :name,
            slug = :slug,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, t)
	return slugError(err, t.Slug)
}

func (r *PGRepository) DeleteTerm(ctx context.Context, orgID, id string) error {
	_, err := database.Executor(ctx, r.DB).ExecContext(ctx,
		`DELETE FROM terms WHERE organization_id = $1 AND id = $2`, orgID, id)
	return err
}

func (r *PGRepository) IsTermSlugTaken(ctx context.Context, orgID, attributeID, slug, excludeID string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM terms
            WHERE organization_id = $1 AND attribute_id = $2 AND slug = $3 AND id::text <> $4
        )
    `
	return r.exists(ctx, query, orgID, attributeID, slug, excludeID)
}

func (r *PGRepository) IsTermInUse(ctx context.Context, orgID, id string) (bool, error) {
	query := `
        SELECT EXISTS (SELECT 1 FROM product_terms WHERE organization_id = $1 AND term_id = $2)
            OR EXISTS (SELECT 1 FROM variant_terms WHERE organization_id = $1 AND term_id = $2)
    `
	return r.exists(ctx, query, orgID, id)
}

func (r *PGRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &found, query, args...); err != nil {
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
