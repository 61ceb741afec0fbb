package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendormart/ledger/internal/logger"
	"github.com/vendormart/ledger/internal/models"
	"go.uber.org/zap"
)

// NotificationRepository persists notifications
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Notifier writes notifications asynchronously. Delivery is best-effort:
// a failed write is logged and dropped, it never propagates back to the
// financial mutation that triggered it.
type Notifier struct {
	repo NotificationRepository
	ch   chan models.Notification
}

// NewNotifier creates new Notifier instance
func NewNotifier(repo NotificationRepository) *Notifier {
	return &Notifier{
		repo: repo,
		ch:   make(chan models.Notification, 64),
	}
}

// Notify queues a notification for dispatch. It never blocks; when the
// queue is full the notification is dropped and logged.
func (n *Notifier) Notify(userID uint64, title, message, ntype string) {
	notification := models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    ntype,
	}

	select {
	case n.ch <- notification:
	default:
		logger.Log.Warn("notification queue full, dropping",
			zap.Uint64("user_id", userID),
			zap.String("type", ntype))
	}
}

// Run consumes the queue until ctx is done
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("notifier is done")
			return
		case notification := <-n.ch:
			if err := n.repo.CreateNotification(ctx, &notification); err != nil {
				logger.Log.Warn("cannot write notification",
					zap.Uint64("user_id", notification.UserID),
					zap.Error(err))
			}
		}
	}
}
