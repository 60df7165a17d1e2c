package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const addressColumns = `address_id, user_id, full_name, phone, line1, line2, city, state, postal_code, country, is_default, created_at, updated_at`

const (
	listByUserQuery = `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at
	`
	getByIDQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE address_id = $1`

	insertAddressQuery = `
		INSERT INTO addresses (user_id, full_name, phone, line1, line2, city, state, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING address_id, created_at, updated_at
	`
	updateAddressQuery = `
		UPDATE addresses
		SET full_name = $1, phone = $2, line1 = $3, line2 = $4, city = $5,
			state = $6, postal_code = $7, country = $8, is_default = $9, updated_at = now()
		WHERE address_id = $10
		RETURNING updated_at
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE address_id = $1`
	clearDefaultQuery  = `UPDATE addresses SET is_default = FALSE, updated_at = now() WHERE user_id = $1 AND is_default`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(userID int) ([]Address, error) {
	rows, err := r.db.Query(listByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Address, error) {
	return scanAddress(r.db.QueryRow(getByIDQuery, id))
}

func (r *PostgresRepository) Create(a Address) (Address, error) {
	err := r.db.QueryRow(insertAddressQuery,
		a.UserID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(a Address) (Address, error) {
	err := r.db.QueryRow(updateAddressQuery,
		a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault, a.ID).
		Scan(&a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteAddressQuery, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearDefault(userID int) error {
	_, err := r.db.Exec(clearDefaultQuery, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}
