package cart

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	cartItemColumns = `ci.cart_item_id, ci.user_id, ci.product_id, ci.quantity, ci.price_at_addition, ci.added_at, ci.updated_at,
		p.product_id, p.name, p.slug, p.sku, p.brand, p.description, p.price, p.discount_price, p.stock, p.active, p.featured, p.category_id, p.image, p.average_rating, p.review_count, p.view_count, p.sold_count, p.created_at, p.updated_at`

	getItemsQuery = `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.product_id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at
	`
	getItemQuery = `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.product_id = ci.product_id
		WHERE ci.user_id = $1 AND ci.product_id = $2
	`
	upsertItemQuery = `
		INSERT INTO cart_items (user_id, product_id, quantity, price_at_addition)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, price_at_addition = EXCLUDED.price_at_addition, updated_at = now()
		RETURNING cart_item_id, added_at, updated_at
	`
	removeItemQuery = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`
	clearCartQuery  = `DELETE FROM cart_items WHERE user_id = $1`
	countItemsQuery = `SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetItems(userID int) ([]Item, error) {
	rows, err := r.db.Query(getItemsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetItem(userID, productID int) (Item, error) {
	it, err := scanItem(r.db.QueryRow(getItemQuery, userID, productID))
	if err == sql.ErrNoRows {
		return Item{}, ErrItemNotFound
	}
	return it, err
}

func (r *PostgresRepository) Save(item Item) (Item, error) {
	err := r.db.QueryRow(upsertItemQuery, item.UserID, item.ProductID, item.Quantity, item.PriceAtAddition).
		Scan(&item.ID, &item.AddedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *PostgresRepository) Remove(userID, productID int) error {
	res, err := r.db.Exec(removeItemQuery, userID, productID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(userID int) error {
	_, err := r.db.Exec(clearCartQuery, userID)
	return err
}

func (r *PostgresRepository) Count(userID int) (int, error) {
	var n int
	err := r.db.QueryRow(countItemsQuery, userID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var it Item
	p := &it.Product
	err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.PriceAtAddition, &it.AddedAt, &it.UpdatedAt,
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Brand, &p.Description, &p.Price, &p.DiscountPrice, &p.Stock,
		&p.Active, &p.Featured, &p.CategoryID, &p.Image, &p.AverageRating, &p.ReviewCount, &p.ViewCount,
		&p.SoldCount, &p.CreatedAt, &p.UpdatedAt)
	return it, err
}
