package cart

import (
	"time"

	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/shopspring/decimal"
)

// Item is one cart line: a (user, product) pair with the price captured at
// the time the line was last touched, so cart totals do not drift with
// live price changes until the next mutation.
type Item struct {
	ID              int             `json:"cartItemId"`
	UserID          int             `json:"-"`
	ProductID       int             `json:"productId"`
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"priceAtAddition"`
	AddedAt         time.Time       `json:"addedAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Product         product.Product `json:"product"`
}

// Subtotal is price-at-addition times quantity.
func (it Item) Subtotal() decimal.Decimal {
	return it.PriceAtAddition.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Available reports whether the line could be ordered right now.
func (it Item) Available() bool {
	return it.Product.Active && it.Product.Stock >= it.Quantity
}

// Summary aggregates a cart for display.
type Summary struct {
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Cart is the API shape for a user's cart.
type Cart struct {
	Items   []Item  `json:"items"`
	Summary Summary `json:"summary"`
}

// ValidationResult reports per-line problems found before checkout.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
