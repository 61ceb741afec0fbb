package models

import "errors"

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrOrderNotSettleable = errors.New("order is not delivered and paid")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderHasNoItems    = errors.New("order has no items")
	ErrInternalError      = errors.New("internal error")
)
