package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vendormart/ledger/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBalances struct {
	stored map[uint64]decimal.Decimal
}

func (f *fakeBalances) GetVendorIDs(context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(f.stored))
	for id := range f.stored {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeBalances) GetVendorBalance(_ context.Context, vendorID uint64) (decimal.Decimal, error) {
	return f.stored[vendorID], nil
}

type fakeLedger struct {
	computed map[uint64]decimal.Decimal
}

func (f *fakeLedger) SettledTotalByVendor(_ context.Context, vendorID uint64) (decimal.Decimal, error) {
	return f.computed[vendorID], nil
}

func TestReconciler_FlagsDrift(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = prev }()

	balances := &fakeBalances{stored: map[uint64]decimal.Decimal{
		7: decimal.RequireFromString("85.00"),
		8: decimal.RequireFromString("40.00"),
	}}
	ledger := &fakeLedger{computed: map[uint64]decimal.Decimal{
		7: decimal.RequireFromString("85.00"),
		8: decimal.RequireFromString("55.00"),
	}}

	r := NewReconciler(balances, ledger, time.Minute)
	r.reconcile(context.Background())

	drift := logs.FilterMessage("vendor balance drift detected").All()
	assert.Len(t, drift, 1)
	assert.Equal(t, uint64(8), drift[0].ContextMap()["vendor_id"])
}

func TestReconciler_CleanBalances(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = prev }()

	balances := &fakeBalances{stored: map[uint64]decimal.Decimal{
		7: decimal.RequireFromString("85.00"),
	}}
	ledger := &fakeLedger{computed: map[uint64]decimal.Decimal{
		7: decimal.RequireFromString("85.0000"),
	}}

	r := NewReconciler(balances, ledger, time.Minute)
	r.reconcile(context.Background())

	assert.Empty(t, logs.All())
}
