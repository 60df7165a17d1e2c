package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Prices use decimal to match the
// numeric(10,2) columns; nullable columns map to pointers.
type Product struct {
	ID            int              `json:"productId"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	SKU           *string          `json:"sku,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Stock         int              `json:"stock"`
	Active        bool             `json:"active"`
	Featured      bool             `json:"featured"`
	CategoryID    int              `json:"categoryId"`
	Image         *string          `json:"image,omitempty"`
	AverageRating float64          `json:"averageRating"`
	ReviewCount   int              `json:"reviewCount"`
	ViewCount     int64            `json:"viewCount"`
	SoldCount     int              `json:"soldCount"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// HasDiscount reports whether a discount price is set and actually lower
// than the regular price.
func (p Product) HasDiscount() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// EffectivePrice is the price a buyer pays right now.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.HasDiscount() {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
