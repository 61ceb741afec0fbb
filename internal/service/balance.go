package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vendormart/ledger/internal/models"
)

// VendorBalanceRepository reads stored vendor balances
type VendorBalanceRepository interface {
	// GetVendorBalance returns the stored withdrawal balance
	GetVendorBalance(ctx context.Context, vendorID uint64) (decimal.Decimal, error)
}

// EarningReader lists vendor earnings
type EarningReader interface {
	// GetEarningsByVendorID returns vendor earnings, newest first
	GetEarningsByVendorID(ctx context.Context, vendorID uint64) ([]models.Earning, error)
}

// BalanceService implements BalanceService interface
type BalanceService struct {
	vendors  VendorBalanceRepository
	earnings EarningReader
}

// NewBalanceService creates new BalanceService instance
func NewBalanceService(vendors VendorBalanceRepository, earnings EarningReader) *BalanceService {
	return &BalanceService{
		vendors:  vendors,
		earnings: earnings,
	}
}

// GetBalance returns current vendor withdrawal balance
func (bs *BalanceService) GetBalance(ctx context.Context, vendorID uint64) (decimal.Decimal, error) {
	return bs.vendors.GetVendorBalance(ctx, vendorID)
}

// GetEarnings returns vendor earnings
func (bs *BalanceService) GetEarnings(ctx context.Context, vendorID uint64) ([]models.Earning, error) {
	earnings, err := bs.earnings.GetEarningsByVendorID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if len(earnings) == 0 {
		return nil, models.ErrDataNotFound
	}

	return earnings, nil
}
