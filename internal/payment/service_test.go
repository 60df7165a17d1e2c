package payment

import (
	"testing"

	"github.com/patcharw/ecommerce-backend/internal/cart"
	"github.com/patcharw/ecommerce-backend/internal/order"
	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *order.Service, int) {
	t.Helper()
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Kettle", Price: decimal.RequireFromString("30.00"), Stock: 4, Active: true},
	})
	carts := cart.NewInMemoryRepository(products)
	orders := order.NewService(order.NewInMemoryRepository(products, carts), carts, nil)

	_, err := carts.Save(cart.Item{UserID: 9, ProductID: 1, Quantity: 1, PriceAtAddition: decimal.RequireFromString("30.00")})
	require.NoError(t, err)
	ord, err := orders.CreateOrder(9, order.CreateOrderRequest{
		ShippingName: "Jane Doe", ShippingLine1: "42 Sukhumvit Rd", ShippingCity: "Bangkok",
		ShippingPostalCode: "10110", ShippingCountry: "TH", PaymentMethod: "CREDIT_CARD",
	})
	require.NoError(t, err)

	return NewService(NewInMemoryRepository(), orders, nil), orders, ord.ID
}

func TestPayCompletesAndConfirmsOrder(t *testing.T) {
	svc, orders, orderID := newTestService(t)

	p, err := svc.Pay(9, orderID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, p.Status)
	require.NotEmpty(t, p.TransactionID)
	require.True(t, p.Amount.Equal(decimal.RequireFromString("30.00")))

	ord, err := orders.Get(9, orderID)
	require.NoError(t, err)
	require.Equal(t, order.PaymentPaid, ord.PaymentStatus)
	require.Equal(t, order.StatusConfirmed, ord.Status)
}

func TestPayRejectsSettledOrder(t *testing.T) {
	svc, _, orderID := newTestService(t)

	_, err := svc.Pay(9, orderID)
	require.NoError(t, err)

	_, err = svc.Pay(9, orderID)
	require.ErrorIs(t, err, ErrAlreadySettled)
}

func TestPayEnforcesOwnership(t *testing.T) {
	svc, _, orderID := newTestService(t)

	_, err := svc.Pay(10, orderID)
	require.ErrorIs(t, err, order.ErrAccessDenied)
}

func TestGetByOrder(t *testing.T) {
	svc, _, orderID := newTestService(t)

	_, err := svc.GetByOrder(9, orderID)
	require.ErrorIs(t, err, ErrNotFound)

	paid, err := svc.Pay(9, orderID)
	require.NoError(t, err)

	got, err := svc.GetByOrder(9, orderID)
	require.NoError(t, err)
	require.Equal(t, paid.TransactionID, got.TransactionID)
}
