package order

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func sampleOrder() Order {
	return Order{
		OrderNumber:   "ORD-20260831120000-0042",
		UserID:        7,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		PaymentMethod: MethodCreditCard,
		Subtotal:      dec("20.00"),
		Discount:      dec("0.00"),
		Tax:           dec("0.00"),
		ShippingCost:  dec("0.00"),
		TotalAmount:   dec("20.00"),
		Shipping: ShippingAddress{
			Name: "Jane Doe", Email: "jane@example.com", Phone: "0812345678",
			Line1: "42 Sukhumvit Rd", City: "Bangkok", PostalCode: "10110", Country: "TH",
		},
		Items: []Item{{
			ProductID: 1, ProductName: "Plain Tee", Quantity: 2,
			UnitPrice: dec("10.00"), DiscountAmount: dec("0.00"), Subtotal: dec("20.00"),
		}},
	}
}

func TestPostgresCreateCommitsAllWrites(t *testing.T) {
	repo, mock := newMockRepo(t)
	ord := sampleOrder()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(lockProductsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "stock", "active"}).
			AddRow(1, "Plain Tee", 5, true))
	mock.ExpectQuery(insertOrderQuery).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "created_at", "updated_at"}).
			AddRow(11, now, now))
	mock.ExpectQuery(insertOrderItemQuery).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(21))
	mock.ExpectExec(consumeStockQuery).
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(clearCartQuery).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.Create(ord)
	require.NoError(t, err)
	require.Equal(t, 11, created.ID)
	require.Equal(t, 21, created.Items[0].ID)
	require.Equal(t, 11, created.Items[0].OrderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateRollsBackOnInsufficientStock(t *testing.T) {
	repo, mock := newMockRepo(t)
	ord := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(lockProductsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "stock", "active"}).
			AddRow(1, "Plain Tee", 1, true))
	mock.ExpectRollback()

	_, err := repo.Create(ord)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 1, stockErr.Available)
	require.Equal(t, 2, stockErr.Requested)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateRollsBackOnInactiveProduct(t *testing.T) {
	repo, mock := newMockRepo(t)
	ord := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(lockProductsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "stock", "active"}).
			AddRow(1, "Plain Tee", 5, false))
	mock.ExpectRollback()

	_, err := repo.Create(ord)
	var unavailableErr *ProductUnavailableError
	require.ErrorAs(t, err, &unavailableErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateMapsOrderNumberCollision(t *testing.T) {
	repo, mock := newMockRepo(t)
	ord := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(lockProductsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "stock", "active"}).
			AddRow(1, "Plain Tee", 5, true))
	mock.ExpectQuery(insertOrderQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"})
	mock.ExpectRollback()

	_, err := repo.Create(ord)
	require.ErrorIs(t, err, ErrOrderNumberTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCancelRestoresStockInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	ord := sampleOrder()
	ord.ID = 11
	ord.Items[0].OrderID = 11
	ord.Status = StatusCancelled
	now := time.Now()
	ord.CancelledAt = &now

	mock.ExpectBegin()
	mock.ExpectQuery(lockOrderQuery).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PENDING"))
	mock.ExpectQuery(lockProductsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "stock", "active"}).
			AddRow(1, "Plain Tee", 3, true))
	mock.ExpectExec(restoreStockQuery).
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(updateLifecycleQuery).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectCommit()

	cancelled, err := repo.Cancel(ord)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCancelRejectsAlreadyCancelledOrder(t *testing.T) {
	repo, mock := newMockRepo(t)
	ord := sampleOrder()
	ord.ID = 11
	ord.Items[0].OrderID = 11
	ord.Status = StatusCancelled

	mock.ExpectBegin()
	mock.ExpectQuery(lockOrderQuery).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("CANCELLED"))
	mock.ExpectRollback()

	_, err := repo.Cancel(ord)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, StatusCancelled, transitionErr.Status)
	// no restoreStockQuery expectation: the stock writes never run
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStatistics(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(statisticsQuery).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count", "coalesce"}).AddRow(3, "30.00"))

	stats, err := repo.Statistics(7)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalOrders)
	require.True(t, stats.TotalSpent.Equal(dec("30.00")))
	require.True(t, stats.AverageOrderValue.Equal(dec("10.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}
