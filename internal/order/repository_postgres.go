package order

import (
	"database/sql"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const orderColumns = `order_id, order_number, user_id, status, payment_status, payment_method,
	subtotal, discount, tax, shipping_cost, total_amount,
	shipping_name, shipping_email, shipping_phone, shipping_line1, shipping_line2,
	shipping_city, shipping_state, shipping_postal_code, shipping_country,
	order_notes, tracking_number, cancellation_reason, cancelled_at, delivered_at, created_at, updated_at`

const (
	// Locks every product row the order touches before the stock check,
	// in stable id order so concurrent orders cannot deadlock.
	lockProductsQuery = `
		SELECT product_id, name, stock, active
		FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY product_id
		FOR UPDATE
	`
	insertOrderQuery = `
		INSERT INTO orders (order_number, user_id, status, payment_status, payment_method,
			subtotal, discount, tax, shipping_cost, total_amount,
			shipping_name, shipping_email, shipping_phone, shipping_line1, shipping_line2,
			shipping_city, shipping_state, shipping_postal_code, shipping_country, order_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING order_id, created_at, updated_at
	`
	insertOrderItemQuery = `
		INSERT INTO order_items (order_id, product_id, product_name, product_sku, product_image, quantity, unit_price, discount_amount, subtotal)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING order_item_id
	`
	// The stock guard repeats inside the UPDATE so stock can never go
	// negative even if the locked check is ever bypassed.
	consumeStockQuery = `
		UPDATE products
		SET stock = stock - $1, sold_count = sold_count + $1, updated_at = now()
		WHERE product_id = $2 AND stock >= $1
	`
	restoreStockQuery = `
		UPDATE products
		SET stock = stock + $1, sold_count = sold_count - $1, updated_at = now()
		WHERE product_id = $2
	`
	clearCartQuery = `DELETE FROM cart_items WHERE user_id = $1`

	// Locks the order row and reports its committed status, so two
	// concurrent cancellations cannot both restore the same stock.
	lockOrderQuery = `SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`

	getOrderByIDQuery     = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	getOrderByNumberQuery = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	listOrdersByUserQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	countOrdersByUserQuery = `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	listRecentOrdersQuery  = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	listItemsByOrdersQuery = `
		SELECT order_item_id, order_id, product_id, product_name, product_sku, product_image, quantity, unit_price, discount_amount, subtotal
		FROM order_items
		WHERE order_id = ANY($1::int[])
		ORDER BY order_item_id
	`
	updateLifecycleQuery = `
		UPDATE orders
		SET status = $1,
			payment_status = $2,
			tracking_number = $3,
			cancellation_reason = $4,
			cancelled_at = $5,
			delivered_at = $6,
			updated_at = now()
		WHERE order_id = $7
		RETURNING updated_at
	`
	statisticsQuery = `SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type lockedProduct struct {
	name   string
	stock  int
	active bool
}

func (r *PostgresRepository) Create(ord Order) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	locked, err := lockProducts(tx, ord.Items)
	if err != nil {
		return Order{}, err
	}

	// verify under lock: nothing between this check and the decrement
	// can change the rows
	for _, it := range ord.Items {
		p, ok := locked[it.ProductID]
		if !ok || !p.active {
			name := it.ProductName
			if ok {
				name = p.name
			}
			return Order{}, &ProductUnavailableError{ProductName: name}
		}
		if p.stock < it.Quantity {
			return Order{}, &InsufficientStockError{ProductName: p.name, Available: p.stock, Requested: it.Quantity}
		}
	}

	err = tx.QueryRow(insertOrderQuery,
		ord.OrderNumber, ord.UserID, ord.Status, ord.PaymentStatus, ord.PaymentMethod,
		ord.Subtotal, ord.Discount, ord.Tax, ord.ShippingCost, ord.TotalAmount,
		ord.Shipping.Name, ord.Shipping.Email, ord.Shipping.Phone, ord.Shipping.Line1, ord.Shipping.Line2,
		ord.Shipping.City, ord.Shipping.State, ord.Shipping.PostalCode, ord.Shipping.Country, ord.OrderNotes).
		Scan(&ord.ID, &ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Order{}, ErrOrderNumberTaken
		}
		return Order{}, err
	}

	for i := range ord.Items {
		it := &ord.Items[i]
		it.OrderID = ord.ID
		if err := tx.QueryRow(insertOrderItemQuery,
			it.OrderID, it.ProductID, it.ProductName, it.ProductSKU, it.ProductImage,
			it.Quantity, it.UnitPrice, it.DiscountAmount, it.Subtotal).Scan(&it.ID); err != nil {
			return Order{}, err
		}

		res, err := tx.Exec(consumeStockQuery, it.Quantity, it.ProductID)
		if err != nil {
			return Order{}, err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			p := locked[it.ProductID]
			return Order{}, &InsufficientStockError{ProductName: p.name, Available: p.stock, Requested: it.Quantity}
		}
	}

	if _, err := tx.Exec(clearCartQuery, ord.UserID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderByIDQuery, id))
	if err != nil {
		return Order{}, err
	}
	return r.attachItems(ord)
}

func (r *PostgresRepository) GetByNumber(number string) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderByNumberQuery, number))
	if err != nil {
		return Order{}, err
	}
	return r.attachItems(ord)
}

func (r *PostgresRepository) ListByUser(userID, page, size int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow(countOrdersByUserQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	orders, err := r.queryOrders(listOrdersByUserQuery, userID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PostgresRepository) ListRecent(userID, limit int) ([]Order, error) {
	return r.queryOrders(listRecentOrdersQuery, userID, limit)
}

func (r *PostgresRepository) Cancel(ord Order) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	var current Status
	if err := tx.QueryRow(lockOrderQuery, ord.ID).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if !current.Cancellable() {
		return Order{}, &InvalidTransitionError{Op: "cancelled", Status: current}
	}

	if _, err := lockProducts(tx, ord.Items); err != nil {
		return Order{}, err
	}

	for _, it := range ord.Items {
		if _, err := tx.Exec(restoreStockQuery, it.Quantity, it.ProductID); err != nil {
			return Order{}, err
		}
	}

	if err := updateLifecycle(tx, &ord); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) UpdateLifecycle(ord Order) (Order, error) {
	if err := updateLifecycle(r.db, &ord); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) Statistics(userID int) (Statistics, error) {
	stats := Statistics{TotalSpent: decimal.Zero, AverageOrderValue: decimal.Zero}
	if err := r.db.QueryRow(statisticsQuery, userID).Scan(&stats.TotalOrders, &stats.TotalSpent); err != nil {
		return Statistics{}, err
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalSpent.DivRound(decimal.NewFromInt(int64(stats.TotalOrders)), 2)
	}
	return stats, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func updateLifecycle(db execer, ord *Order) error {
	err := db.QueryRow(updateLifecycleQuery,
		ord.Status, ord.PaymentStatus, ord.TrackingNumber, ord.CancellationReason,
		ord.CancelledAt, ord.DeliveredAt, ord.ID).
		Scan(&ord.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

func lockProducts(tx *sql.Tx, items []Item) (map[int]lockedProduct, error) {
	idSet := make(map[int]struct{}, len(items))
	for _, it := range items {
		idSet[it.ProductID] = struct{}{}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows, err := tx.Query(lockProductsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locked := make(map[int]lockedProduct, len(ids))
	for rows.Next() {
		var id int
		var p lockedProduct
		if err := rows.Scan(&id, &p.name, &p.stock, &p.active); err != nil {
			return nil, err
		}
		locked[id] = p
	}
	return locked, rows.Err()
}

func (r *PostgresRepository) queryOrders(query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachItemsAll(orders)
}

// attachItemsAll loads the items for a batch of orders in one query.
func (r *PostgresRepository) attachItemsAll(orders []Order) ([]Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]int, len(orders))
	byID := make(map[int]*Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
		orders[i].Items = []Item{}
	}

	rows, err := r.db.Query(listItemsByOrdersQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductSKU, &it.ProductImage,
			&it.Quantity, &it.UnitPrice, &it.DiscountAmount, &it.Subtotal); err != nil {
			return nil, err
		}
		if ord, ok := byID[it.OrderID]; ok {
			ord.Items = append(ord.Items, it)
		}
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) attachItems(ord Order) (Order, error) {
	orders, err := r.attachItemsAll([]Order{ord})
	if err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	err := row.Scan(&ord.ID, &ord.OrderNumber, &ord.UserID, &ord.Status, &ord.PaymentStatus, &ord.PaymentMethod,
		&ord.Subtotal, &ord.Discount, &ord.Tax, &ord.ShippingCost, &ord.TotalAmount,
		&ord.Shipping.Name, &ord.Shipping.Email, &ord.Shipping.Phone, &ord.Shipping.Line1, &ord.Shipping.Line2,
		&ord.Shipping.City, &ord.Shipping.State, &ord.Shipping.PostalCode, &ord.Shipping.Country,
		&ord.OrderNotes, &ord.TrackingNumber, &ord.CancellationReason, &ord.CancelledAt, &ord.DeliveredAt,
		&ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return ord, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
