package review

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound      = errors.New("review not found")
	ErrAlreadyExists = errors.New("review already exists for this product")
)

type Repository interface {
	ListByProduct(productID, page, size int) ([]Review, int, error)
	GetByID(id int) (Review, error)
	GetByUserAndProduct(userID, productID int) (Review, error)
	// Create returns ErrAlreadyExists when the user already reviewed the
	// product.
	Create(rev Review) (Review, error)
	Update(rev Review) (Review, error)
	Delete(id int) error
	// Summarize recomputes the average rating and count for a product.
	Summarize(productID int) (RatingSummary, error)
	// HasDeliveredOrder reports whether the user has a delivered order
	// containing the product.
	HasDeliveredOrder(userID, productID int) (bool, error)
}

// InMemoryRepository backs the service tests. Delivered purchases are
// recorded directly via MarkDelivered.
type InMemoryRepository struct {
	mu        sync.RWMutex
	reviews   []Review
	nextID    int
	delivered map[[2]int]bool
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, delivered: make(map[[2]int]bool)}
}

// MarkDelivered records that userID received productID in a delivered
// order.
func (r *InMemoryRepository) MarkDelivered(userID, productID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered[[2]int{userID, productID}] = true
}

func (r *InMemoryRepository) HasDeliveredOrder(userID, productID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.delivered[[2]int{userID, productID}], nil
}

func (r *InMemoryRepository) ListByProduct(productID, page, size int) ([]Review, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Review, 0)
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].ProductID == productID {
			all = append(all, r.reviews[i])
		}
	}
	total := len(all)
	start := page * size
	if start >= len(all) {
		return []Review{}, total, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *InMemoryRepository) GetByID(id int) (Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rev := range r.reviews {
		if rev.ID == id {
			return rev, nil
		}
	}
	return Review{}, ErrNotFound
}

func (r *InMemoryRepository) GetByUserAndProduct(userID, productID int) (Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rev := range r.reviews {
		if rev.UserID == userID && rev.ProductID == productID {
			return rev, nil
		}
	}
	return Review{}, ErrNotFound
}

func (r *InMemoryRepository) Create(rev Review) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.UserID == rev.UserID && existing.ProductID == rev.ProductID {
			return Review{}, ErrAlreadyExists
		}
	}
	rev.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	rev.CreatedAt = now
	rev.UpdatedAt = now
	r.reviews = append(r.reviews, rev)
	return rev, nil
}

func (r *InMemoryRepository) Update(rev Review) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.reviews {
		if r.reviews[i].ID == rev.ID {
			rev.CreatedAt = r.reviews[i].CreatedAt
			rev.UpdatedAt = time.Now().UTC()
			r.reviews[i] = rev
			return rev, nil
		}
	}
	return Review{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.reviews {
		if r.reviews[i].ID == id {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Summarize(productID int) (RatingSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum, count := 0, 0
	for _, rev := range r.reviews {
		if rev.ProductID == productID {
			sum += rev.Rating
			count++
		}
	}
	if count == 0 {
		return RatingSummary{}, nil
	}
	return RatingSummary{Average: float64(sum) / float64(count), Count: count}, nil
}
