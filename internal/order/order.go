package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// ParseStatus validates an incoming status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// PaymentStatus tracks payment settlement independently of fulfilment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, s)
}

type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "CREDIT_CARD"
	MethodDebitCard      PaymentMethod = "DEBIT_CARD"
	MethodPayPal         PaymentMethod = "PAYPAL"
	MethodStripe         PaymentMethod = "STRIPE"
	MethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// ParsePaymentMethod falls back to cash-on-delivery for unknown values
// instead of rejecting the order.
func ParsePaymentMethod(s string) PaymentMethod {
	switch PaymentMethod(s) {
	case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodStripe, MethodCashOnDelivery:
		return PaymentMethod(s)
	}
	return MethodCashOnDelivery
}

// ShippingAddress is copied onto the order at creation time so later
// address-book edits never alter historical orders.
type ShippingAddress struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      *string `json:"state,omitempty"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
}

// Item is an immutable snapshot of one purchased product. It is created
// once with its parent order and never mutated afterwards; the product
// reference exists for back-navigation, not live pricing.
type Item struct {
	ID             int             `json:"orderItemId"`
	OrderID        int             `json:"-"`
	ProductID      int             `json:"productId"`
	ProductName    string          `json:"productName"`
	ProductSKU     *string         `json:"productSku,omitempty"`
	ProductImage   *string         `json:"productImage,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Order is the aggregate root: items exist only through order creation,
// and create/cancel commit as a single transaction.
type Order struct {
	ID                 int             `json:"orderId"`
	OrderNumber        string          `json:"orderNumber"`
	UserID             int             `json:"userId"`
	Status             Status          `json:"status"`
	PaymentStatus      PaymentStatus   `json:"paymentStatus"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	Tax                decimal.Decimal `json:"tax"`
	ShippingCost       decimal.Decimal `json:"shippingCost"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Shipping           ShippingAddress `json:"shippingAddress"`
	Items              []Item          `json:"items"`
	OrderNotes         *string         `json:"orderNotes,omitempty"`
	TrackingNumber     *string         `json:"trackingNumber,omitempty"`
	CancellationReason *string         `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Cancellable reports whether a cancellation is allowed from s.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanBeCancelled reports whether a user cancellation is still allowed.
func (o *Order) CanBeCancelled() bool {
	return o.Status.Cancellable()
}

// Statistics summarises a user's order history.
type Statistics struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalSpent        decimal.Decimal `json:"totalSpent"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}
