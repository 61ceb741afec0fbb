package repository

import (
	"context"

	"github.com/vendormart/ledger/internal/models"
	"github.com/vendormart/ledger/internal/repository/postgres"
)

const (
	insertNotificationQuery = `
						INSERT INTO notifications (id, user_id, title, message, type)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING created_at
`
	selectNotificationsByUserIDQuery = `
						SELECT id, user_id, title, message, type, created_at FROM notifications
						WHERE user_id = $1
						ORDER BY created_at DESC
`
)

// NotificationRepository implements NotificationRepository interface
type NotificationRepository struct {
	db *postgres.DB
}

// NewNotificationRepository creates new NotificationRepository instance
func NewNotificationRepository(db *postgres.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts new notification
func (nr *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return nr.db.QueryRow(ctx, insertNotificationQuery, n.ID, n.UserID, n.Title, n.Message, n.Type).Scan(&n.CreatedAt)
}

// GetNotificationsByUserID returns user notifications, newest first
func (nr *NotificationRepository) GetNotificationsByUserID(ctx context.Context, userID uint64) ([]models.Notification, error) {
	rows, err := nr.db.Query(ctx, selectNotificationsByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification

	for rows.Next() {
		n := models.Notification{}
		err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.CreatedAt)
		if err != nil {
			continue
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}
