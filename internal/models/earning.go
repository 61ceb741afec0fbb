package models

import (
	"time"

	"github.com/shopspring/decimal"
)

//PENDING — reserved, never assigned by the engine;
//PROCESSING — earning settled, funds credited to the vendor balance;
//COMPLETED — reserved, never assigned by the engine;
//FAILED — earning reversed after a refund or post-payment cancellation.

// earning status
const (
	EarningStatusPending    = "PENDING"
	EarningStatusProcessing = "PROCESSING"
	EarningStatusCompleted  = "COMPLETED"
	EarningStatusFailed     = "FAILED"
)

// Earning is one commission settlement record per (order, vendor) pair.
// At most one row may exist per pair, enforced by a unique index.
type Earning struct {
	ID                  uint64
	VendorID            uint64
	OrderID             uint64
	GrossAmount         decimal.Decimal
	CommissionAmount    decimal.Decimal
	NetAmount           decimal.Decimal
	Status              string
	MovedToWithdrawal   bool
	MovedToWithdrawalAt *time.Time
	CreatedAt           time.Time
}
