package cart

import (
	"errors"
	"fmt"

	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/shopspring/decimal"
)

var (
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// InsufficientStockError reports a stock shortfall for a specific product.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for '%s'. available: %d, requested: %d", e.ProductName, e.Available, e.Requested)
}

// Service orchestrates cart operations.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) GetCart(userID int) (Cart, error) {
	items, err := s.repo.GetItems(userID)
	if err != nil {
		return Cart{}, err
	}
	return buildCart(items), nil
}

// AddToCart adds qty of a product, merging into an existing line. The
// price snapshot is refreshed on every mutation.
func (s *Service) AddToCart(userID, productID, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	p, err := s.products.ListByIDs([]int{productID})
	if err != nil {
		return Cart{}, err
	}
	if len(p) == 0 {
		return Cart{}, product.ErrNotFound
	}
	prod := p[0]
	if !prod.Active {
		return Cart{}, ErrProductUnavailable
	}

	newQty := qty
	if existing, err := s.repo.GetItem(userID, productID); err == nil {
		newQty += existing.Quantity
	} else if err != ErrItemNotFound {
		return Cart{}, err
	}

	if prod.Stock < newQty {
		return Cart{}, &InsufficientStockError{ProductName: prod.Name, Available: prod.Stock, Requested: newQty}
	}

	_, err = s.repo.Save(Item{
		UserID:          userID,
		ProductID:       productID,
		Quantity:        newQty,
		PriceAtAddition: prod.EffectivePrice(),
	})
	if err != nil {
		return Cart{}, err
	}
	return s.GetCart(userID)
}

// UpdateItem sets an existing line to an absolute quantity.
func (s *Service) UpdateItem(userID, productID, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	existing, err := s.repo.GetItem(userID, productID)
	if err != nil {
		return Cart{}, err
	}
	if existing.Product.Stock < qty {
		return Cart{}, &InsufficientStockError{ProductName: existing.Product.Name, Available: existing.Product.Stock, Requested: qty}
	}

	existing.Quantity = qty
	existing.PriceAtAddition = existing.Product.EffectivePrice()
	if _, err := s.repo.Save(existing); err != nil {
		return Cart{}, err
	}
	return s.GetCart(userID)
}

func (s *Service) RemoveFromCart(userID, productID int) (Cart, error) {
	if err := s.repo.Remove(userID, productID); err != nil {
		return Cart{}, err
	}
	return s.GetCart(userID)
}

func (s *Service) ClearCart(userID int) error {
	return s.repo.Clear(userID)
}

func (s *Service) Count(userID int) (int, error) {
	return s.repo.Count(userID)
}

// Validate checks every line against live product state before checkout:
// inactive products and stock shortfalls are errors, price drift since the
// line was captured is a warning.
func (s *Service) Validate(userID int) (ValidationResult, error) {
	items, err := s.repo.GetItems(userID)
	if err != nil {
		return ValidationResult{}, err
	}

	res := ValidationResult{Valid: true}
	for _, it := range items {
		if !it.Product.Active {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("product '%s' is no longer available", it.Product.Name))
			continue
		}
		if it.Product.Stock < it.Quantity {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("insufficient stock for '%s'. available: %d, requested: %d",
				it.Product.Name, it.Product.Stock, it.Quantity))
		}
		if current := it.Product.EffectivePrice(); !current.Equal(it.PriceAtAddition) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("price changed for '%s'. old: %s, new: %s",
				it.Product.Name, it.PriceAtAddition.StringFixed(2), current.StringFixed(2)))
		}
	}
	return res, nil
}

func buildCart(items []Item) Cart {
	summary := Summary{Subtotal: decimal.Zero}
	for _, it := range items {
		summary.TotalItems += it.Quantity
		summary.Subtotal = summary.Subtotal.Add(it.Subtotal())
	}
	return Cart{Items: items, Summary: summary}
}
