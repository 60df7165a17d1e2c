package order

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/patcharw/ecommerce-backend/internal/cart"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// orderNumberAttempts bounds the regenerate-and-retry loop on an
// order-number collision.
const orderNumberAttempts = 5

// TotalsCalculator computes tax and shipping for an order. The default
// charges neither; deployments plug in their own rates.
type TotalsCalculator interface {
	Totals(subtotal decimal.Decimal, items []Item) (tax, shipping decimal.Decimal)
}

type zeroTotals struct{}

func (zeroTotals) Totals(decimal.Decimal, []Item) (decimal.Decimal, decimal.Decimal) {
	return decimal.Zero, decimal.Zero
}

type CreateOrderRequest struct {
	ShippingName       string  `json:"shippingName"`
	ShippingEmail      string  `json:"shippingEmail"`
	ShippingPhone      string  `json:"shippingPhone"`
	ShippingLine1      string  `json:"shippingLine1"`
	ShippingLine2      *string `json:"shippingLine2"`
	ShippingCity       string  `json:"shippingCity"`
	ShippingState      *string `json:"shippingState"`
	ShippingPostalCode string  `json:"shippingPostalCode"`
	ShippingCountry    string  `json:"shippingCountry"`
	PaymentMethod      string  `json:"paymentMethod"`
	OrderNotes         *string `json:"orderNotes"`
}

func (r CreateOrderRequest) validate() error {
	missing := []string{}
	for field, val := range map[string]string{
		"shippingName":       r.ShippingName,
		"shippingLine1":      r.ShippingLine1,
		"shippingCity":       r.ShippingCity,
		"shippingPostalCode": r.ShippingPostalCode,
		"shippingCountry":    r.ShippingCountry,
	} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Message: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))}
	}
	return nil
}

type Service struct {
	repo   Repository
	carts  cart.Repository
	totals TotalsCalculator
	now    func() time.Time
}

type ServiceInterface interface {
	CreateOrder(userID int, req CreateOrderRequest) (Order, error)
	Get(userID, orderID int) (Order, error)
	GetByNumber(userID int, number string) (Order, error)
	History(userID, page, size int) ([]Order, int, error)
	Recent(userID int) ([]Order, error)
	Statistics(userID int) (Statistics, error)
	Cancel(userID, orderID int, reason string) (Order, error)
	UpdateStatus(orderID int, status string) (Order, error)
	UpdatePaymentStatus(orderID int, paymentStatus string) (Order, error)
	SetTracking(orderID int, trackingNumber string) (Order, error)
}

func NewService(repo Repository, carts cart.Repository, totals TotalsCalculator) *Service {
	if totals == nil {
		totals = zeroTotals{}
	}
	return &Service{repo: repo, carts: carts, totals: totals, now: time.Now}
}

// CreateOrder turns the user's cart into an order. Line prices come from
// the cart's snapshots; the discount column records what active product
// discounts saved against regular prices.
func (s *Service) CreateOrder(userID int, req CreateOrderRequest) (Order, error) {
	if err := req.validate(); err != nil {
		return Order{}, err
	}

	lines, err := s.carts.GetItems(userID)
	if err != nil {
		return Order{}, err
	}
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	// early availability check for a friendly error before the
	// transaction; the repository re-checks under lock
	for _, line := range lines {
		if !line.Product.Active {
			return Order{}, &ProductUnavailableError{ProductName: line.Product.Name}
		}
		if line.Product.Stock < line.Quantity {
			return Order{}, &InsufficientStockError{ProductName: line.Product.Name, Available: line.Product.Stock, Requested: line.Quantity}
		}
	}

	ord := s.buildOrder(userID, req, lines)

	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		ord.OrderNumber = s.newOrderNumber()
		created, err := s.repo.Create(ord)
		if err == ErrOrderNumberTaken {
			log.Warn().Str("order_number", ord.OrderNumber).Msg("order number collision, regenerating")
			continue
		}
		if err != nil {
			return Order{}, err
		}
		log.Info().Int("user_id", userID).Str("order_number", created.OrderNumber).
			Str("total", created.TotalAmount.String()).Msg("order created")
		return created, nil
	}
	return Order{}, ErrOrderNumberTaken
}

func (s *Service) buildOrder(userID int, req CreateOrderRequest, lines []cart.Item) Order {
	items := make([]Item, 0, len(lines))
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		lineDiscount := decimal.Zero
		if line.Product.HasDiscount() {
			lineDiscount = line.Product.Price.Sub(line.Product.EffectivePrice()).Mul(qty)
		}
		lineSubtotal := line.PriceAtAddition.Mul(qty)
		items = append(items, Item{
			ProductID:      line.ProductID,
			ProductName:    line.Product.Name,
			ProductSKU:     line.Product.SKU,
			ProductImage:   line.Product.Image,
			Quantity:       line.Quantity,
			UnitPrice:      line.PriceAtAddition,
			DiscountAmount: lineDiscount,
			Subtotal:       lineSubtotal,
		})
		subtotal = subtotal.Add(lineSubtotal)
		discount = discount.Add(lineDiscount)
	}

	tax, shipping := s.totals.Totals(subtotal, items)
	return Order{
		UserID:        userID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		PaymentMethod: ParsePaymentMethod(req.PaymentMethod),
		Subtotal:      subtotal,
		Discount:      discount,
		Tax:           tax,
		ShippingCost:  shipping,
		TotalAmount:   subtotal.Add(tax).Add(shipping),
		Shipping: ShippingAddress{
			Name:       req.ShippingName,
			Email:      req.ShippingEmail,
			Phone:      req.ShippingPhone,
			Line1:      req.ShippingLine1,
			Line2:      req.ShippingLine2,
			City:       req.ShippingCity,
			State:      req.ShippingState,
			PostalCode: req.ShippingPostalCode,
			Country:    req.ShippingCountry,
		},
		Items:      items,
		OrderNotes: req.OrderNotes,
	}
}

func (s *Service) newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", s.now().Format("20060102150405"), rand.Intn(10000))
}

// Get returns the order only if it belongs to the user. Pass userID 0 to
// skip the ownership check for admin lookups.
func (s *Service) Get(userID, orderID int) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if userID != 0 && ord.UserID != userID {
		return Order{}, ErrAccessDenied
	}
	return ord, nil
}

func (s *Service) GetByNumber(userID int, number string) (Order, error) {
	ord, err := s.repo.GetByNumber(number)
	if err != nil {
		return Order{}, err
	}
	if userID != 0 && ord.UserID != userID {
		return Order{}, ErrAccessDenied
	}
	return ord, nil
}

func (s *Service) History(userID, page, size int) ([]Order, int, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return s.repo.ListByUser(userID, page, size)
}

func (s *Service) Recent(userID int) ([]Order, error) {
	return s.repo.ListRecent(userID, 5)
}

func (s *Service) Statistics(userID int) (Statistics, error) {
	return s.repo.Statistics(userID)
}

// Cancel cancels the user's own order, restores the stock its lines
// consumed, and flips a paid order to refunded.
func (s *Service) Cancel(userID, orderID int, reason string) (Order, error) {
	ord, err := s.Get(userID, orderID)
	if err != nil {
		return Order{}, err
	}
	if !ord.CanBeCancelled() {
		return Order{}, &InvalidTransitionError{Op: "cancelled", Status: ord.Status}
	}

	now := s.now().UTC()
	ord.Status = StatusCancelled
	ord.CancelledAt = &now
	if reason != "" {
		ord.CancellationReason = &reason
	}
	if ord.PaymentStatus == PaymentPaid {
		ord.PaymentStatus = PaymentRefunded
	}

	cancelled, err := s.repo.Cancel(ord)
	if err != nil {
		return Order{}, err
	}
	log.Info().Str("order_number", cancelled.OrderNumber).Msg("order cancelled")
	return cancelled, nil
}

func (s *Service) UpdateStatus(orderID int, status string) (Order, error) {
	parsed, err := ParseStatus(status)
	if err != nil {
		return Order{}, err
	}
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	ord.Status = parsed
	if parsed == StatusDelivered && ord.DeliveredAt == nil {
		now := s.now().UTC()
		ord.DeliveredAt = &now
	}
	return s.repo.UpdateLifecycle(ord)
}

// UpdatePaymentStatus records a settlement change. Setting PAID always
// moves the order to confirmed, whatever state it was in.
func (s *Service) UpdatePaymentStatus(orderID int, paymentStatus string) (Order, error) {
	parsed, err := ParsePaymentStatus(paymentStatus)
	if err != nil {
		return Order{}, err
	}
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	ord.PaymentStatus = parsed
	if parsed == PaymentPaid {
		ord.Status = StatusConfirmed
	}
	return s.repo.UpdateLifecycle(ord)
}

// SetTracking attaches a tracking number and moves the order to shipped.
func (s *Service) SetTracking(orderID int, trackingNumber string) (Order, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return Order{}, &ValidationError{Message: "tracking number is required"}
	}
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	ord.TrackingNumber = &trackingNumber
	ord.Status = StatusShipped
	return s.repo.UpdateLifecycle(ord)
}
