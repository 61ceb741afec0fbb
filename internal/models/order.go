package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// order status
const (
	OrderStatusPending    = "PENDING"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusRefunded   = "REFUNDED"
)

// payment status
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

// Order is order entity. The marketplace assigns exactly one vendor per
// order, not per line item; a cart spanning vendors is split upstream.
type Order struct {
	ID            uint64
	Number        string
	CustomerID    uint64
	VendorID      uint64
	TotalAmount   decimal.Decimal
	ShippingCost  decimal.Decimal
	Status        string
	PaymentStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one product line within an order. Price is a snapshot taken
// at purchase time, decoupled from the live product price.
type OrderItem struct {
	ID        uint64
	OrderID   uint64
	ProductID uint64
	Quantity  uint32
	Price     decimal.Decimal
	Total     decimal.Decimal
	// CommissionRate is the category commission rate joined in at read
	// time, nil when the category has none set.
	CommissionRate *decimal.Decimal
}
