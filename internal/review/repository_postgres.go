package review

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

const reviewColumns = `r.review_id, r.product_id, r.user_id,
	u.first_name || ' ' || u.last_name,
	r.rating, r.title, r.comment, r.verified_purchase, r.created_at, r.updated_at`

const (
	listByProductQuery = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`
	countByProductQuery = `SELECT COUNT(*) FROM reviews WHERE product_id = $1`
	getByIDQuery        = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.review_id = $1
	`
	getByUserAndProductQuery = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.user_id = $1 AND r.product_id = $2
	`
	insertReviewQuery = `
		INSERT INTO reviews (product_id, user_id, rating, title, comment, verified_purchase)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING review_id, created_at, updated_at
	`
	updateReviewQuery = `
		UPDATE reviews
		SET rating = $1, title = $2, comment = $3, updated_at = now()
		WHERE review_id = $4
		RETURNING updated_at
	`
	deleteReviewQuery = `DELETE FROM reviews WHERE review_id = $1`
	summarizeQuery    = `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = $1
	`
	hasDeliveredOrderQuery = `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.order_id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'DELIVERED'
		)
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByProduct(productID, page, size int) ([]Review, int, error) {
	var total int
	if err := r.db.QueryRow(countByProductQuery, productID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(listByProductQuery, productID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, total, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Review, error) {
	return scanReview(r.db.QueryRow(getByIDQuery, id))
}

func (r *PostgresRepository) GetByUserAndProduct(userID, productID int) (Review, error) {
	return scanReview(r.db.QueryRow(getByUserAndProductQuery, userID, productID))
}

func (r *PostgresRepository) Create(rev Review) (Review, error) {
	err := r.db.QueryRow(insertReviewQuery,
		rev.ProductID, rev.UserID, rev.Rating, rev.Title, rev.Comment, rev.VerifiedPurchase).
		Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Review{}, ErrAlreadyExists
		}
		return Review{}, err
	}
	return rev, nil
}

func (r *PostgresRepository) Update(rev Review) (Review, error) {
	err := r.db.QueryRow(updateReviewQuery, rev.Rating, rev.Title, rev.Comment, rev.ID).
		Scan(&rev.UpdatedAt)
	if err == sql.ErrNoRows {
		return Review{}, ErrNotFound
	}
	if err != nil {
		return Review{}, err
	}
	return rev, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteReviewQuery, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Summarize(productID int) (RatingSummary, error) {
	var summary RatingSummary
	err := r.db.QueryRow(summarizeQuery, productID).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return RatingSummary{}, err
	}
	return summary, nil
}

func (r *PostgresRepository) HasDeliveredOrder(userID, productID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(hasDeliveredOrderQuery, userID, productID).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (Review, error) {
	var rev Review
	err := row.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.ReviewerName,
		&rev.Rating, &rev.Title, &rev.Comment, &rev.VerifiedPurchase, &rev.CreatedAt, &rev.UpdatedAt)
	if err == sql.ErrNoRows {
		return Review{}, ErrNotFound
	}
	if err != nil {
		return Review{}, err
	}
	return rev, nil
}
