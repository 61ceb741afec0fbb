package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vendormart/ledger/internal/logger"
	"github.com/vendormart/ledger/internal/models"
	"go.uber.org/zap"
)

// DefaultCommissionRate applies when the product category carries no rate
var DefaultCommissionRate = decimal.NewFromInt(15)

var hundred = decimal.NewFromInt(100)

// EarningRepository is interface for interacting with earning-related data
type EarningRepository interface {
	// GetEarningByOrderVendor returns earning for (order, vendor) pair
	GetEarningByOrderVendor(ctx context.Context, orderID, vendorID uint64) (*models.Earning, error)
	// CreateEarningAndCredit atomically inserts the earning and credits the vendor balance
	CreateEarningAndCredit(ctx context.Context, earning *models.Earning) (*models.Earning, error)
	// FailEarningAndDebit atomically marks the earning FAILED and debits the vendor balance
	FailEarningAndDebit(ctx context.Context, earning *models.Earning, debit bool) (decimal.Decimal, error)
}

// LedgerOrderRepository is the order read model the ledger consumes
type LedgerOrderRepository interface {
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id uint64) (*models.Order, error)
	// GetOrderItems returns order items joined with the category commission rate
	GetOrderItems(ctx context.Context, orderID uint64) ([]models.OrderItem, error)
}

// VendorReader resolves vendor profiles for notification routing
type VendorReader interface {
	GetVendorByID(ctx context.Context, id uint64) (*models.VendorProfile, error)
}

// Notifier dispatches fire-and-forget notifications
type Notifier interface {
	Notify(userID uint64, title, message, ntype string)
}

// LedgerService converts a delivered, paid order into a commission record
// and adjusts the vendor balance exactly once, and reverses that effect
// exactly once if the order is later refunded.
type LedgerService struct {
	earnings EarningRepository
	orders   LedgerOrderRepository
	vendors  VendorReader
	notifier Notifier
}

// NewLedgerService creates new LedgerService instance
func NewLedgerService(earnings EarningRepository, orders LedgerOrderRepository, vendors VendorReader, notifier Notifier) *LedgerService {
	return &LedgerService{
		earnings: earnings,
		orders:   orders,
		vendors:  vendors,
		notifier: notifier,
	}
}

// SettleOrder records the commission settlement for a delivered, paid
// order. Calling it again for the same order is a no-op returning the
// existing earning. The earning insert and the balance credit commit in
// one transaction; a concurrent duplicate loses on the (order_id,
// vendor_id) unique constraint and resolves to the winner's row.
func (ls *LedgerService) SettleOrder(ctx context.Context, orderID uint64) (*models.Earning, error) {
	order, err := ls.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered || order.PaymentStatus != models.PaymentStatusCompleted {
		return nil, models.ErrOrderNotSettleable
	}

	// cheap pre-check; the unique constraint closes the remaining race window
	earning, err := ls.earnings.GetEarningByOrderVendor(ctx, order.ID, order.VendorID)
	if err == nil {
		return earning, nil
	}
	if !errors.Is(err, models.ErrDataNotFound) {
		return nil, err
	}

	items, err := ls.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.ErrOrderHasNoItems
	}

	rate := averageCommissionRate(items)

	// shipping is excluded from the commission base
	gross := order.TotalAmount.Sub(order.ShippingCost)
	commission := gross.Mul(rate).Div(hundred)
	net := gross.Sub(commission)

	earning = &models.Earning{
		VendorID:          order.VendorID,
		OrderID:           order.ID,
		GrossAmount:       gross,
		CommissionAmount:  commission,
		NetAmount:         net,
		Status:            models.EarningStatusProcessing,
		MovedToWithdrawal: true,
	}

	created, err := ls.earnings.CreateEarningAndCredit(ctx, earning)
	if err != nil {
		if errors.Is(err, models.ErrConflictData) {
			// lost the race, the winner's row is the settlement
			return ls.earnings.GetEarningByOrderVendor(ctx, order.ID, order.VendorID)
		}
		return nil, err
	}

	logger.Log.Info("order settled",
		zap.Uint64("order_id", order.ID),
		zap.Uint64("vendor_id", order.VendorID),
		zap.String("net_amount", created.NetAmount.StringFixed(2)))

	ls.notifyVendor(ctx, order.VendorID,
		"Earning received",
		fmt.Sprintf("You earned %s for order %s. Funds are available for withdrawal.", created.NetAmount.StringFixed(2), order.Number),
		models.NotificationTypeEarning)

	return created, nil
}

// ReverseSettlement undoes the settlement effect for a refunded or
// post-payment cancelled order. An order that was never settled is an
// audited no-op, as is a repeated reversal.
func (ls *LedgerService) ReverseSettlement(ctx context.Context, orderID uint64) error {
	order, err := ls.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	earning, err := ls.earnings.GetEarningByOrderVendor(ctx, order.ID, order.VendorID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			logger.Log.Warn("no earning to reverse",
				zap.Uint64("order_id", order.ID),
				zap.Uint64("vendor_id", order.VendorID))
			return nil
		}
		return err
	}

	if earning.Status == models.EarningStatusFailed {
		return nil
	}

	balance, err := ls.earnings.FailEarningAndDebit(ctx, earning, earning.MovedToWithdrawal)
	if err != nil {
		if errors.Is(err, models.ErrConflictData) {
			// concurrent reversal already committed
			return nil
		}
		return err
	}

	logger.Log.Info("settlement reversed",
		zap.Uint64("order_id", order.ID),
		zap.Uint64("vendor_id", order.VendorID),
		zap.String("net_amount", earning.NetAmount.StringFixed(2)))

	if earning.MovedToWithdrawal && balance.IsNegative() {
		// funds may already have been withdrawn; the debit stands and the
		// shortfall is surfaced for manual reconciliation
		logger.Log.Error("vendor balance overdrawn after reversal",
			zap.Uint64("order_id", order.ID),
			zap.Uint64("vendor_id", order.VendorID),
			zap.String("balance", balance.StringFixed(2)))
		ls.notifyVendor(ctx, order.VendorID,
			"Account overdrawn",
			fmt.Sprintf("The refund of order %s left your balance at %s. Our team will contact you.", order.Number, balance.StringFixed(2)),
			models.NotificationTypeOverdraft)
	}

	ls.notifyVendor(ctx, order.VendorID,
		"Earning reversed",
		fmt.Sprintf("Your earning of %s for order %s was reversed due to a refund.", earning.NetAmount.StringFixed(2), order.Number),
		models.NotificationTypeReversal)

	return nil
}

// notifyVendor resolves the vendor's user account and dispatches a
// notification. Delivery is best-effort and never fails the settlement.
func (ls *LedgerService) notifyVendor(ctx context.Context, vendorID uint64, title, message, ntype string) {
	vendor, err := ls.vendors.GetVendorByID(ctx, vendorID)
	if err != nil {
		logger.Log.Warn("cannot resolve vendor for notification",
			zap.Uint64("vendor_id", vendorID), zap.Error(err))
		return
	}

	ls.notifier.Notify(vendor.UserID, title, message, ntype)
}

// averageCommissionRate returns the simple unweighted average of per-item
// rates. Each missing category rate falls back to the default; rates are
// clamped to [0,100]. The average is deliberately not value-weighted:
// changing that silently changes vendor payouts.
func averageCommissionRate(items []models.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		rate := DefaultCommissionRate
		if item.CommissionRate != nil {
			rate = *item.CommissionRate
		}
		if rate.IsNegative() {
			rate = decimal.Zero
		}
		if rate.GreaterThan(hundred) {
			rate = hundred
		}
		sum = sum.Add(rate)
	}

	return sum.Div(decimal.NewFromInt(int64(len(items))))
}
