package payment

import (
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("payment not found")

type Repository interface {
	Create(p Payment) (Payment, error)
	GetByOrder(orderID int) (Payment, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	payments []Payment
	nextID   int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(p Payment) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now().UTC()
	r.payments = append(r.payments, p)
	return p, nil
}

func (r *InMemoryRepository) GetByOrder(orderID int) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// newest attempt wins
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].OrderID == orderID {
			return r.payments[i], nil
		}
	}
	return Payment{}, ErrNotFound
}
