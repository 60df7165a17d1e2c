package product

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const productColumns = `product_id, name, slug, sku, brand, description, price, discount_price, stock, active, featured, category_id, image, average_rating, review_count, view_count, sold_count, created_at, updated_at`

const (
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE product_id = $1
	`
	listProductsByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY array_position($1::int[], product_id)
	`
	insertProductQuery = `
		INSERT INTO products (name, slug, sku, brand, description, price, discount_price, stock, active, featured, category_id, image)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING product_id, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			slug = $2,
			sku = $3,
			brand = $4,
			description = $5,
			price = $6,
			discount_price = $7,
			stock = $8,
			active = $9,
			featured = $10,
			category_id = $11,
			image = $12,
			updated_at = now()
		WHERE product_id = $13
		RETURNING created_at, updated_at
	`
	deactivateProductQuery = `UPDATE products SET active = FALSE, updated_at = now() WHERE product_id = $1`
	incrementViewQuery     = `UPDATE products SET view_count = view_count + 1 WHERE product_id = $1`
	updateRatingQuery      = `UPDATE products SET average_rating = $1, review_count = $2, updated_at = now() WHERE product_id = $3`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(filter ListFilter) ([]Product, int, error) {
	where := "WHERE active = TRUE"
	args := []any{}
	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		where += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.Featured {
		where += " AND featured = TRUE"
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + productColumns + " FROM products " + where + " ORDER BY product_id"
	if filter.Size > 0 {
		args = append(args, filter.Size)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Page*filter.Size)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.Query(listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	err := r.db.QueryRow(insertProductQuery,
		p.Name, p.Slug, p.SKU, p.Brand, p.Description, p.Price, p.DiscountPrice,
		p.Stock, p.Active, p.Featured, p.CategoryID, p.Image).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	err := r.db.QueryRow(updateProductQuery,
		p.Name, p.Slug, p.SKU, p.Brand, p.Description, p.Price, p.DiscountPrice,
		p.Stock, p.Active, p.Featured, p.CategoryID, p.Image, id).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Deactivate(id int) error {
	return execExpectingRow(r.db, deactivateProductQuery, id)
}

func (r *PostgresRepository) IncrementViewCount(id int) error {
	return execExpectingRow(r.db, incrementViewQuery, id)
}

func (r *PostgresRepository) UpdateRating(id int, average float64, count int) error {
	return execExpectingRow(r.db, updateRatingQuery, average, count, id)
}

func execExpectingRow(db *sql.DB, query string, args ...any) error {
	res, err := db.Exec(query, args...)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Brand, &p.Description,
		&p.Price, &p.DiscountPrice, &p.Stock, &p.Active, &p.Featured, &p.CategoryID,
		&p.Image, &p.AverageRating, &p.ReviewCount, &p.ViewCount, &p.SoldCount,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}
