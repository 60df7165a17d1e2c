package order

import (
	"sort"
	"sync"
	"time"

	"github.com/patcharw/ecommerce-backend/internal/cart"
	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/shopspring/decimal"
)

// Repository persists orders. Create and Cancel are atomic units: either
// every write they imply commits (header, items, product stock/sold-count
// deltas, cart deletion) or none does.
type Repository interface {
	// Create persists the order with its items, decrements stock and
	// increments sold-count for every line, and clears the user's cart.
	// Returns ErrOrderNumberTaken on an order-number collision and typed
	// stock errors when the final in-transaction check fails.
	Create(ord Order) (Order, error)
	GetByID(id int) (Order, error)
	GetByNumber(number string) (Order, error)
	ListByUser(userID, page, size int) ([]Order, int, error)
	ListRecent(userID, limit int) ([]Order, error)
	// Cancel persists the already-mutated order and restores exactly the
	// stock and sold-count its lines consumed, atomically. The stored
	// status is re-checked inside the transaction: a *InvalidTransitionError
	// is returned when the order is no longer cancellable, so a stale
	// caller-side check cannot restore the same stock twice.
	Cancel(ord Order) (Order, error)
	// UpdateLifecycle persists status, payment status, tracking and
	// timestamp fields. Monetary fields and items are never touched.
	UpdateLifecycle(ord Order) (Order, error)
	Statistics(userID int) (Statistics, error)
}

// InMemoryRepository mirrors the Postgres semantics for tests: it applies
// stock deltas through the shared product repository and clears the cart
// on create.
type InMemoryRepository struct {
	mu       sync.RWMutex
	orders   []Order
	nextID   int
	products *product.InMemoryRepository
	carts    cart.Repository
}

func NewInMemoryRepository(products *product.InMemoryRepository, carts cart.Repository) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, products: products, carts: carts}
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.OrderNumber == ord.OrderNumber {
			return Order{}, ErrOrderNumberTaken
		}
	}

	// final stock check, as the Postgres transaction does under lock
	for _, it := range ord.Items {
		p, err := r.products.GetByID(it.ProductID)
		if err != nil {
			return Order{}, &ProductUnavailableError{ProductName: it.ProductName}
		}
		if !p.Active {
			return Order{}, &ProductUnavailableError{ProductName: p.Name}
		}
		if p.Stock < it.Quantity {
			return Order{}, &InsufficientStockError{ProductName: p.Name, Available: p.Stock, Requested: it.Quantity}
		}
	}

	for _, it := range ord.Items {
		if err := r.products.AdjustStock(it.ProductID, -it.Quantity, it.Quantity); err != nil {
			return Order{}, err
		}
	}

	ord.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	ord.CreatedAt = now
	ord.UpdatedAt = now
	for i := range ord.Items {
		ord.Items[i].ID = i + 1
		ord.Items[i].OrderID = ord.ID
	}
	r.orders = append(r.orders, ord)

	if r.carts != nil {
		if err := r.carts.Clear(ord.UserID); err != nil {
			return Order{}, err
		}
	}
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ord := range r.orders {
		if ord.ID == id {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) GetByNumber(number string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ord := range r.orders {
		if ord.OrderNumber == number {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID, page, size int) ([]Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.ordersOfUser(userID)
	total := len(all)
	start := page * size
	if start >= len(all) {
		return []Order{}, total, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *InMemoryRepository) ListRecent(userID, limit int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.ordersOfUser(userID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *InMemoryRepository) Cancel(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// re-check the stored status, as the Postgres transaction does under lock
	current, err := r.statusOf(ord.ID)
	if err != nil {
		return Order{}, err
	}
	if !current.Cancellable() {
		return Order{}, &InvalidTransitionError{Op: "cancelled", Status: current}
	}

	for _, it := range ord.Items {
		if err := r.products.AdjustStock(it.ProductID, it.Quantity, -it.Quantity); err != nil {
			return Order{}, err
		}
	}
	return r.store(ord)
}

func (r *InMemoryRepository) UpdateLifecycle(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store(ord)
}

func (r *InMemoryRepository) Statistics(userID int) (Statistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Statistics{TotalSpent: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, ord := range r.orders {
		if ord.UserID != userID {
			continue
		}
		stats.TotalOrders++
		stats.TotalSpent = stats.TotalSpent.Add(ord.TotalAmount)
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalSpent.DivRound(decimal.NewFromInt(int64(stats.TotalOrders)), 2)
	}
	return stats, nil
}

func (r *InMemoryRepository) statusOf(orderID int) (Status, error) {
	for i := range r.orders {
		if r.orders[i].ID == orderID {
			return r.orders[i].Status, nil
		}
	}
	return "", ErrNotFound
}

func (r *InMemoryRepository) store(ord Order) (Order, error) {
	for i := range r.orders {
		if r.orders[i].ID == ord.ID {
			ord.UpdatedAt = time.Now().UTC()
			r.orders[i] = ord
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ordersOfUser(userID int) []Order {
	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
