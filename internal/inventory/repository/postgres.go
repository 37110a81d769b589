package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-catalog-service/internal/database"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Upsert never inserts a second row for the same (variant, country). The
// existing row keeps its id and has its four mutable fields replaced.
func (r *PGRepository) Upsert(ctx context.Context, rec *model.StockRecord) error {
	if !rec.ManageStock {
		rec.StockLevel = model.Unlimited()
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
        INSERT INTO stock_records (
            id, variant_id, organization_id, country_code, stock_level,
            visibility, manage_stock, allow_backorder, updated_at
        )
        VALUES (
            :id, :variant_id, :organization_id, :country_code, :stock_level,
            :visibility, :manage_stock, :allow_backorder, :updated_at
        )
        ON CONFLICT (variant_id, country_code) DO UPDATE
        SET stock_level = EXCLUDED.stock_level,
            visibility = EXCLUDED.visibility,
            manage_stock = EXCLUDED.manage_stock,
            allow_backorder = EXCLUDED.allow_backorder,
            updated_at = EXCLUDED.updated_at
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, database.Executor(ctx, r.DB), query, rec)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&rec.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *PGRepository) ListByVariantIDs(ctx context.Context, orgID string, variantIDs []string) ([]model.StockRecord, error) {
	variantIDs = database.ValidIDs(variantIDs)
	if len(variantIDs) == 0 {
		return []model.StockRecord{}, nil
	}
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(`
        SELECT * FROM stock_records
        WHERE organization_id = ? AND variant_id IN (?)
        ORDER BY variant_id, country_code
    `, orgID, variantIDs)
	if err != nil {
		return nil, err
	}
	var records []model.StockRecord
	err = sqlx.SelectContext(ctx, exec, &records, exec.Rebind(query), args...)
	return records, err
}

func (r *PGRepository) DeleteByVariantIDs(ctx context.Context, orgID string, variantIDs []string) error {
	variantIDs = database.ValidIDs(variantIDs)
	if len(variantIDs) == 0 {
		return nil
	}
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(`DELETE FROM stock_records WHERE organization_id = ? AND variant_id IN (?)`, orgID, variantIDs)
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, exec.Rebind(query), args...)
	return err
}

func (r *PGRepository) DeleteCountries(ctx context.Context, orgID, variantID string, countryCodes []string) error {
	if len(countryCodes) == 0 {
		return nil
	}
	exec := database.Executor(ctx, r.DB)
	query, args, err := sqlx.In(`
        DELETE FROM stock_records
        WHERE organization_id = ? AND variant_id = ? AND country_code IN (?)
    `, orgID, variantID, countryCodes)
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, exec.Rebind(query), args...)
	return err
}
