package worker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendormart/ledger/internal/logger"
	"go.uber.org/zap"
)

// BalanceReader reads stored vendor balances
type BalanceReader interface {
	GetVendorIDs(ctx context.Context) ([]uint64, error)
	GetVendorBalance(ctx context.Context, vendorID uint64) (decimal.Decimal, error)
}

// LedgerReader recomputes balances from earning rows
type LedgerReader interface {
	SettledTotalByVendor(ctx context.Context, vendorID uint64) (decimal.Decimal, error)
}

// Reconciler periodically recomputes each vendor balance from the earning
// ledger and reports drift against the stored aggregate. It never corrects
// the stored value: drift needs an operator and an audit trail.
type Reconciler struct {
	vendors  BalanceReader
	earnings LedgerReader
	interval time.Duration
}

// NewReconciler creates new Reconciler instance
func NewReconciler(vendors BalanceReader, earnings LedgerReader, interval time.Duration) *Reconciler {
	return &Reconciler{
		vendors:  vendors,
		earnings: earnings,
		interval: interval,
	}
}

// Run reconciles on a ticker until ctx is done
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("reconciler is done")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	ids, err := r.vendors.GetVendorIDs(ctx)
	if err != nil {
		logger.Log.Error("cannot list vendors for reconciliation", zap.Error(err))
		return
	}

	for _, id := range ids {
		stored, err := r.vendors.GetVendorBalance(ctx, id)
		if err != nil {
			logger.Log.Error("cannot read vendor balance", zap.Uint64("vendor_id", id), zap.Error(err))
			continue
		}

		computed, err := r.earnings.SettledTotalByVendor(ctx, id)
		if err != nil {
			logger.Log.Error("cannot recompute vendor balance", zap.Uint64("vendor_id", id), zap.Error(err))
			continue
		}

		if !stored.Equal(computed) {
			logger.Log.Error("vendor balance drift detected",
				zap.Uint64("vendor_id", id),
				zap.String("stored", stored.String()),
				zap.String("computed", computed.String()))
		}
	}
}
