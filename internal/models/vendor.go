package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorProfile is vendor entity. WithdrawalBalance is a denormalized
// running sum of net earnings available for payout; it must equal the sum
// of NetAmount over earnings with MovedToWithdrawal=true and status not
// FAILED. The reconciler worker checks this and reports drift.
type VendorProfile struct {
	ID                uint64
	UserID            uint64
	Login             string
	PasswordHash      string
	WithdrawalBalance decimal.Decimal
	CreatedAt         time.Time
}

// Category classifies products and optionally carries a commission rate
// percentage in [0,100]. Nil means the system default applies.
type Category struct {
	ID             uint64
	Name           string
	CommissionRate *decimal.Decimal
}
