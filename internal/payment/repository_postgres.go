package payment

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertPaymentQuery = `
		INSERT INTO payments (order_id, user_id, amount, method, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING payment_id, created_at
	`
	getByOrderQuery = `
		SELECT payment_id, order_id, user_id, amount, method, status, transaction_id, created_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(p Payment) (Payment, error) {
	err := r.db.QueryRow(insertPaymentQuery,
		p.OrderID, p.UserID, p.Amount, p.Method, p.Status, p.TransactionID).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByOrder(orderID int) (Payment, error) {
	var p Payment
	err := r.db.QueryRow(getByOrderQuery, orderID).
		Scan(&p.ID, &p.OrderID, &p.UserID, &p.Amount, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return Payment{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}
