package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

const (
	catA = "7a1d2c84-1b7e-4f0a-9e51-5b0c2e7d4a01"
	catB = "7a1d2c84-1b7e-4f0a-9e51-5b0c2e7d4a02"
)

func newRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return NewPGRepository(sqlx.NewDb(raw, "pgx")), mock
}

var columns = []string{"id", "organization_id", "parent_id", "name", "slug", "image_url", "created_at", "updated_at"}

func TestCreateDuplicateSlugIsValidation(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &model.Category{
		BaseModel:      model.BaseModel{ID: catA, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		OrganizationID: "org-1",
		Name:           "Shoes",
		Slug:           "shoes",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), `"shoes"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDsScansParents(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("id IN ($2, $3)")).
		WithArgs("org-1", catA, catB).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(catA, "org-1", nil, "Clothing", "clothing", nil, now, now).
			AddRow(catB, "org-1", catA, "Shirts", "shirts", "https://img/shirts.png", now, now))

	got, err := repo.FindByIDs(context.Background(), "org-1", []string{catA, "bogus", catB})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].ParentID)
	require.NotNil(t, got[1].ParentID)
	assert.Equal(t, catA, *got[1].ParentID)
	require.NotNil(t, got[1].ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDsAllInvalid(t *testing.T) {
	repo, mock := newRepo(t)

	got, err := repo.FindByIDs(context.Background(), "org-1", []string{"bogus"})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasChildren(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("parent_id = $2")).
		WithArgs("org-1", catA).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := repo.HasChildren(context.Background(), "org-1", catA)
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}
