package product

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func productRow(id int, name string, price string, stock int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"product_id", "name", "slug", "sku", "brand", "description", "price", "discount_price",
		"stock", "active", "featured", "category_id", "image", "average_rating", "review_count",
		"view_count", "sold_count", "created_at", "updated_at",
	}).AddRow(id, name, "slug", nil, nil, "", price, nil, stock, true, false, 1, nil, 0.0, 0, 0, 0, now, now)
}

func TestPostgresGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(getProductByIDQuery).
		WithArgs(1).
		WillReturnRows(productRow(1, "Plain Tee", "10.00", 5))

	p, err := repo.GetByID(1)
	require.NoError(t, err)
	require.Equal(t, "Plain Tee", p.Name)
	require.True(t, p.Price.Equal(decimal.RequireFromString("10.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(getProductByIDQuery).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}))

	_, err := repo.GetByID(99)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByIDsPreservesOrder(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := productRow(2, "Logo Tee", "20.00", 3)
	rows.AddRow(1, "Plain Tee", "slug", nil, nil, "", "10.00", nil, 5, true, false, 1, nil, 0.0, 0, 0, 0, time.Now(), time.Now())

	mock.ExpectQuery(listProductsByIDsQuery).
		WillReturnRows(rows)

	out, err := repo.ListByIDs([]int{2, 1})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, 2, out[0].ID)
	require.Equal(t, 1, out[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateRating(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(updateRatingQuery).
		WithArgs(4.5, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateRating(1, 4.5, 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeactivateUnknownProduct(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(deactivateProductQuery).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Deactivate(99), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
