package models

import (
	"time"

	"github.com/google/uuid"
)

// notification type
const (
	NotificationTypeEarning   = "earning"
	NotificationTypeReversal  = "reversal"
	NotificationTypeOverdraft = "overdraft"
)

// Notification is a durable message for a vendor's user account
type Notification struct {
	ID        uuid.UUID
	UserID    uint64
	Title     string
	Message   string
	Type      string
	CreatedAt time.Time
}
