package service

import (
	"context"

	"github.com/vendormart/ledger/internal/logger"
	"github.com/vendormart/ledger/internal/models"
	"go.uber.org/zap"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// GetOrderByNumber returns order by number
	GetOrderByNumber(ctx context.Context, num string) (*models.Order, error)
	// UpdateOrderStatus updates order status and payment status
	UpdateOrderStatus(ctx context.Context, order models.Order) error
}

// SettlementEngine settles and reverses vendor earnings
type SettlementEngine interface {
	SettleOrder(ctx context.Context, orderID uint64) (*models.Earning, error)
	ReverseSettlement(ctx context.Context, orderID uint64) error
}

// valid order status transitions
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusRefunded},
}

// OrderService drives order status transitions and invokes the
// settlement engine on the transitions that carry financial effect.
type OrderService struct {
	repo   OrderRepository
	ledger SettlementEngine
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, ledger SettlementEngine) *OrderService {
	return &OrderService{
		repo:   repo,
		ledger: ledger,
	}
}

func transitionAllowed(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves the order to the given status. Delivery of a paid
// order settles the vendor earning; refund or post-payment cancellation
// reverses it and marks the payment refunded. A settlement failure is
// returned to the caller while the status update stands; repeating the
// request with the same status re-triggers the settlement, which is
// idempotent.
func (os *OrderService) UpdateStatus(ctx context.Context, number, status string) (*models.Order, error) {
	order, err := os.repo.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	paid := order.PaymentStatus == models.PaymentStatusCompleted

	if order.Status != status {
		if !transitionAllowed(order.Status, status) {
			return nil, models.ErrInvalidTransition
		}

		order.Status = status
		if status == models.OrderStatusRefunded || (status == models.OrderStatusCancelled && paid) {
			order.PaymentStatus = models.PaymentStatusRefunded
		}

		if err := os.repo.UpdateOrderStatus(ctx, *order); err != nil {
			return nil, err
		}

		logger.Log.Debug("order status updated",
			zap.String("number", order.Number),
			zap.String("status", order.Status))
	}

	settleNeeded := status == models.OrderStatusDelivered && paid
	reverseNeeded := status == models.OrderStatusRefunded ||
		(status == models.OrderStatusCancelled && order.PaymentStatus == models.PaymentStatusRefunded)

	switch {
	case settleNeeded:
		if _, err := os.ledger.SettleOrder(ctx, order.ID); err != nil {
			return nil, err
		}
	case reverseNeeded:
		if err := os.ledger.ReverseSettlement(ctx, order.ID); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// Refund refunds a delivered order
func (os *OrderService) Refund(ctx context.Context, number string) (*models.Order, error) {
	return os.UpdateStatus(ctx, number, models.OrderStatusRefunded)
}

// GetOrder returns order by number
func (os *OrderService) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	return os.repo.GetOrderByNumber(ctx, number)
}
