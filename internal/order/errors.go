package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("order not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrAccessDenied         = errors.New("order does not belong to user")
	ErrOrderNumberTaken     = errors.New("order number already exists")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// ValidationError reports a malformed create request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProductUnavailableError aborts order creation when a cart line
// references a deactivated product.
type ProductUnavailableError struct {
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product '%s' is no longer available", e.ProductName)
}

// InsufficientStockError aborts order creation when a line asks for more
// units than the product has left.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for '%s'. available: %d, requested: %d", e.ProductName, e.Available, e.Requested)
}

// InvalidTransitionError rejects a lifecycle operation not allowed from
// the order's current status. Op names the rejected operation in past
// tense, e.g. "cancelled".
type InvalidTransitionError struct {
	Op     string
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order cannot be %s. current status: %s", e.Op, e.Status)
}
