package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

const (
	orgID     = "org-1"
	variantID = "7d0c1f08-7a53-4a55-9bb4-5d1c1c9c2a11"
)

func newRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return NewPGRepository(sqlx.NewDb(raw, "pgx")), mock
}

func TestUpsertForcesSentinelForUnmanagedStock(t *testing.T) {
	repo, mock := newRepo(t)
	rec := &model.StockRecord{
		VariantID:      variantID,
		OrganizationID: orgID,
		CountryCode:    "US",
		StockLevel:     model.Managed(12),
		Visibility:     true,
		ManageStock:    false,
		UpdatedAt:      time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (variant_id, country_code) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), variantID, orgID, "US", model.SentinelMax, true, false, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	require.NoError(t, repo.Upsert(context.Background(), rec))
	assert.Equal(t, "existing-id", rec.ID)
	assert.True(t, rec.StockLevel.IsUnlimited())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByVariantIDsScansTaggedStock(t *testing.T) {
	repo, mock := newRepo(t)
	cols := []string{"id", "variant_id", "organization_id", "country_code", "stock_level",
		"visibility", "manage_stock", "allow_backorder", "updated_at"}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM stock_records")).
		WithArgs(orgID, variantID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("s1", variantID, orgID, "DE", model.SentinelMax, true, false, false, now).
			AddRow("s2", variantID, orgID, "US", int64(5), true, true, false, now))

	records, err := repo.ListByVariantIDs(context.Background(), orgID, []string{variantID, "not-a-uuid"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].StockLevel.IsUnlimited())
	assert.Equal(t, model.Managed(5), records[1].StockLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCountriesSkipsEmptySet(t *testing.T) {
	repo, mock := newRepo(t)
	require.NoError(t, repo.DeleteCountries(context.Background(), orgID, variantID, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByVariantIDs(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stock_records WHERE organization_id = $1 AND variant_id IN ($2)")).
		WithArgs(orgID, variantID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteByVariantIDs(context.Background(), orgID, []string{variantID}))
	require.NoError(t, mock.ExpectationsWereMet())
}
