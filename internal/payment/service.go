package payment

import (
	"errors"

	"github.com/google/uuid"
	"github.com/patcharw/ecommerce-backend/internal/order"
	"github.com/rs/zerolog/log"
)

var ErrAlreadySettled = errors.New("order payment is not pending")

// Gateway charges an order total. The stub settles every charge
// immediately; a real integration would talk to a PSP here.
type Gateway interface {
	Charge(p Payment) (transactionID string, status Status, err error)
}

type stubGateway struct{}

func (stubGateway) Charge(Payment) (string, Status, error) {
	return uuid.NewString(), StatusCompleted, nil
}

type Service struct {
	repo    Repository
	orders  order.ServiceInterface
	gateway Gateway
}

type ServiceInterface interface {
	Pay(userID, orderID int) (Payment, error)
	GetByOrder(userID, orderID int) (Payment, error)
}

func NewService(repo Repository, orders order.ServiceInterface, gateway Gateway) *Service {
	if gateway == nil {
		gateway = stubGateway{}
	}
	return &Service{repo: repo, orders: orders, gateway: gateway}
}

// Pay charges the order's total through the gateway and, on success,
// marks the order paid (which also confirms it).
func (s *Service) Pay(userID, orderID int) (Payment, error) {
	ord, err := s.orders.Get(userID, orderID)
	if err != nil {
		return Payment{}, err
	}
	if ord.PaymentStatus != order.PaymentPending {
		return Payment{}, ErrAlreadySettled
	}

	p := Payment{
		OrderID: ord.ID,
		UserID:  userID,
		Amount:  ord.TotalAmount,
		Method:  string(ord.PaymentMethod),
	}
	txnID, status, err := s.gateway.Charge(p)
	if err != nil {
		return Payment{}, err
	}
	p.TransactionID = txnID
	p.Status = status

	created, err := s.repo.Create(p)
	if err != nil {
		return Payment{}, err
	}

	if status == StatusCompleted {
		if _, err := s.orders.UpdatePaymentStatus(orderID, string(order.PaymentPaid)); err != nil {
			return Payment{}, err
		}
	} else if _, err := s.orders.UpdatePaymentStatus(orderID, string(order.PaymentFailed)); err != nil {
		return Payment{}, err
	}

	log.Info().Int("order_id", orderID).Str("transaction_id", txnID).
		Str("status", string(status)).Msg("payment processed")
	return created, nil
}

func (s *Service) GetByOrder(userID, orderID int) (Payment, error) {
	// ownership ride-along: fetching the order enforces the check
	if _, err := s.orders.Get(userID, orderID); err != nil {
		return Payment{}, err
	}
	return s.repo.GetByOrder(orderID)
}
