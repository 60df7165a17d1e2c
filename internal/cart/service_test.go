package cart

import (
	"testing"

	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(t *testing.T, seed []product.Product) (*Service, *product.InMemoryRepository) {
	t.Helper()
	products := product.NewInMemoryRepository(seed)
	return NewService(NewInMemoryRepository(products), product.NewService(products)), products
}

func TestAddToCartMergesQuantities(t *testing.T) {
	svc, _ := newTestService(t, []product.Product{
		{ID: 1, Name: "Plain Tee", Price: dec("10.00"), Stock: 5, Active: true},
	})

	crt, err := svc.AddToCart(7, 1, 2)
	require.NoError(t, err)
	require.Len(t, crt.Items, 1)
	require.Equal(t, 2, crt.Items[0].Quantity)

	crt, err = svc.AddToCart(7, 1, 1)
	require.NoError(t, err)
	require.Len(t, crt.Items, 1)
	require.Equal(t, 3, crt.Items[0].Quantity)
	require.True(t, crt.Summary.Subtotal.Equal(dec("30.00")))
}

func TestAddToCartCapturesDiscountedPrice(t *testing.T) {
	discounted := dec("15.00")
	svc, _ := newTestService(t, []product.Product{
		{ID: 1, Name: "Logo Tee", Price: dec("20.00"), DiscountPrice: &discounted, Stock: 5, Active: true},
	})

	crt, err := svc.AddToCart(7, 1, 1)
	require.NoError(t, err)
	require.True(t, crt.Items[0].PriceAtAddition.Equal(dec("15.00")))
}

func TestAddToCartRejectsStockOverrun(t *testing.T) {
	svc, _ := newTestService(t, []product.Product{
		{ID: 1, Name: "Rare Vinyl", Price: dec("50.00"), Stock: 2, Active: true},
	})

	_, err := svc.AddToCart(7, 1, 2)
	require.NoError(t, err)

	// merged quantity would exceed stock
	_, err = svc.AddToCart(7, 1, 1)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 2, stockErr.Available)
	require.Equal(t, 3, stockErr.Requested)
}

func TestAddToCartRejectsInactiveAndUnknownProducts(t *testing.T) {
	svc, _ := newTestService(t, []product.Product{
		{ID: 1, Name: "Retired Model", Price: dec("99.00"), Stock: 5, Active: false},
	})

	_, err := svc.AddToCart(7, 1, 1)
	require.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddToCart(7, 99, 1)
	require.ErrorIs(t, err, product.ErrNotFound)

	_, err = svc.AddToCart(7, 1, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateItemSetsAbsoluteQuantityAndRefreshesPrice(t *testing.T) {
	svc, products := newTestService(t, []product.Product{
		{ID: 1, Name: "Plain Tee", Price: dec("10.00"), Stock: 10, Active: true},
	})

	_, err := svc.AddToCart(7, 1, 2)
	require.NoError(t, err)

	// price rises after the line was captured
	p, err := products.GetByID(1)
	require.NoError(t, err)
	p.Price = dec("12.00")
	_, err = products.Update(1, p)
	require.NoError(t, err)

	crt, err := svc.UpdateItem(7, 1, 5)
	require.NoError(t, err)
	require.Equal(t, 5, crt.Items[0].Quantity)
	require.True(t, crt.Items[0].PriceAtAddition.Equal(dec("12.00")))
}

func TestValidateFlagsStockErrorsAndPriceDrift(t *testing.T) {
	svc, products := newTestService(t, []product.Product{
		{ID: 1, Name: "Plain Tee", Price: dec("10.00"), Stock: 5, Active: true},
		{ID: 2, Name: "Logo Tee", Price: dec("20.00"), Stock: 5, Active: true},
	})

	_, err := svc.AddToCart(7, 1, 3)
	require.NoError(t, err)
	_, err = svc.AddToCart(7, 2, 2)
	require.NoError(t, err)

	// stock drains and a price drops behind the cart's back
	p1, err := products.GetByID(1)
	require.NoError(t, err)
	p1.Stock = 1
	_, err = products.Update(1, p1)
	require.NoError(t, err)

	p2, err := products.GetByID(2)
	require.NoError(t, err)
	p2.Price = dec("18.00")
	_, err = products.Update(2, p2)
	require.NoError(t, err)

	res, err := svc.Validate(7)
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "insufficient stock")
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "price changed")
}

func TestRemoveAndClear(t *testing.T) {
	svc, _ := newTestService(t, []product.Product{
		{ID: 1, Name: "Plain Tee", Price: dec("10.00"), Stock: 5, Active: true},
		{ID: 2, Name: "Logo Tee", Price: dec("20.00"), Stock: 5, Active: true},
	})

	_, err := svc.AddToCart(7, 1, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(7, 2, 1)
	require.NoError(t, err)

	crt, err := svc.RemoveFromCart(7, 1)
	require.NoError(t, err)
	require.Len(t, crt.Items, 1)

	_, err = svc.RemoveFromCart(7, 1)
	require.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, svc.ClearCart(7))
	n, err := svc.Count(7)
	require.NoError(t, err)
	require.Zero(t, n)
}
