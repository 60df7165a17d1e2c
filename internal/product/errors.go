package product

import "errors"

var (
	ErrInvalidPrice  = errors.New("price must be positive")
	ErrNegativeStock = errors.New("stock must be non-negative")
)
