package db

import (
	"context"
	"time"

	"github.com/smith3v/tg-reminder-bot/pkg/logger"
)

const (
	DeliveryLogCleanupInterval  = time.Hour
	DefaultDeliveryLogRetention = 30 * 24 * time.Hour
)

// CleanupDeliveryLogs drops delivery log rows older than before.
func (s *ReminderStore) CleanupDeliveryLogs(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("attempted_at < ?", before.UTC()).Delete(&DeliveryLog{})
	return res.RowsAffected, res.Error
}

func (s *ReminderStore) StartDeliveryLogCleanup(ctx context.Context, interval, retention time.Duration) {
	if interval <= 0 {
		interval = DeliveryLogCleanupInterval
	}
	if retention <= 0 {
		retention = DefaultDeliveryLogRetention
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.CleanupDeliveryLogs(ctx, time.Now().Add(-retention))
			if err != nil {
				logger.Error("failed to cleanup delivery logs", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Debug("delivery logs pruned", "rows", deleted)
			}
		}
	}
}
