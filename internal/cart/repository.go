package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/patcharw/ecommerce-backend/internal/product"
)

var ErrItemNotFound = errors.New("cart item not found")

// Repository provides access to cart lines. GetItems resolves the product
// for every line in one query so callers never fetch per line.
type Repository interface {
	GetItems(userID int) ([]Item, error)
	GetItem(userID, productID int) (Item, error)
	Save(item Item) (Item, error)
	Remove(userID, productID int) error
	Clear(userID int) error
	Count(userID int) (int, error)
}

// InMemoryRepository is used for tests and local scenarios. It shares a
// product repository so lines resolve live product data the way the
// Postgres join does.
type InMemoryRepository struct {
	mu       sync.RWMutex
	items    []Item
	nextID   int
	products *product.InMemoryRepository
}

func NewInMemoryRepository(products *product.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, products: products}
}

func (r *InMemoryRepository) GetItems(userID int) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0)
	for _, it := range r.items {
		if it.UserID != userID {
			continue
		}
		if p, err := r.products.GetByID(it.ProductID); err == nil {
			it.Product = p
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *InMemoryRepository) GetItem(userID, productID int) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.UserID == userID && it.ProductID == productID {
			if p, err := r.products.GetByID(it.ProductID); err == nil {
				it.Product = p
			}
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (r *InMemoryRepository) Save(item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for i := range r.items {
		if r.items[i].UserID == item.UserID && r.items[i].ProductID == item.ProductID {
			item.ID = r.items[i].ID
			item.AddedAt = r.items[i].AddedAt
			item.UpdatedAt = now
			r.items[i] = item
			return item, nil
		}
	}
	item.ID = r.nextID
	r.nextID++
	item.AddedAt = now
	item.UpdatedAt = now
	r.items = append(r.items, item)
	return item, nil
}

func (r *InMemoryRepository) Remove(userID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.UserID == userID && it.ProductID == productID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, it := range r.items {
		if it.UserID != userID {
			kept = append(kept, it)
		}
	}
	r.items = kept
	return nil
}

func (r *InMemoryRepository) Count(userID int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, it := range r.items {
		if it.UserID == userID {
			n += it.Quantity
		}
	}
	return n, nil
}
