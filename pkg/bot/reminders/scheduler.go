package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
)

const DefaultInterval = 10 * time.Second

// TickStats summarizes one scan.
type TickStats struct {
	Due         int
	Recipients  int
	Delivered   int
	Unreachable int
	Failed      int
	Deleted     int64
}

// Scheduler delivers due reminders on a fixed interval. Every reminder
// it picks up is deleted after the delivery attempt, whatever the result.
type Scheduler struct {
	mu       sync.RWMutex
	store    Store
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	lastTick time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(store Store, notifier Notifier, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
	}
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start runs the loop in the background until Stop or ctx ends. It does
// nothing while a previously started loop is still running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.done != nil {
		select {
		case <-s.done:
		default:
			s.mu.Unlock()
			return
		}
	}
	ctx, s.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.Run(ctx)
	}()
}

func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Run blocks, ticking every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := s.Tick(ctx)
			if err != nil {
				logger.Error("reminder tick finished with errors", "error", err, "due", stats.Due, "failed", stats.Failed)
				continue
			}
			if stats.Due > 0 {
				logger.Info("reminders delivered",
					"due", stats.Due,
					"recipients", stats.Recipients,
					"delivered", stats.Delivered,
					"unreachable", stats.Unreachable,
				)
			}
		}
	}
}

// Tick scans once. Recipients are handled independently; their errors
// are joined into the returned error.
func (s *Scheduler) Tick(ctx context.Context) (TickStats, error) {
	now := s.now().UTC()
	defer s.markTick(now)

	due, err := s.store.Due(ctx, now)
	if err != nil {
		return TickStats{}, fmt.Errorf("load due reminders: %w", err)
	}

	stats := TickStats{Due: len(due)}
	order, groups := groupByRecipient(due)
	stats.Recipients = len(order)

	var errs []error
	for _, recipientID := range order {
		batch := groups[recipientID]
		if err := s.deliver(ctx, recipientID, batch, now, &stats); err != nil {
			errs = append(errs, err)
		}
	}
	return stats, errors.Join(errs...)
}

func (s *Scheduler) deliver(ctx context.Context, recipientID int64, batch []db.Reminder, now time.Time, stats *TickStats) error {
	ids := make([]string, len(batch))
	for i, reminder := range batch {
		ids[i] = reminder.ID
	}

	var errs []error
	status := db.DeliveryDelivered
	notifyErr := s.notifier.Notify(ctx, buildNotification(recipientID, batch))
	switch {
	case notifyErr == nil:
		stats.Delivered++
	case errors.Is(notifyErr, ErrRecipientUnreachable):
		status = db.DeliveryUnreachable
		stats.Unreachable++
		logger.Debug("reminder recipient unreachable", "recipient_id", recipientID, "error", notifyErr)
	default:
		status = db.DeliveryFailed
		stats.Failed++
		errs = append(errs, fmt.Errorf("notify recipient %d: %w", recipientID, notifyErr))
	}

	deleted, err := s.store.DeleteMany(ctx, db.ReminderFilter{IDs: ids})
	stats.Deleted += deleted
	if err != nil {
		errs = append(errs, fmt.Errorf("delete reminders of recipient %d: %w", recipientID, err))
	}

	if err := s.store.RecordDelivery(ctx, db.DeliveryAttempt{
		RecipientID: recipientID,
		ReminderIDs: ids,
		Status:      status,
		Err:         notifyErr,
		At:          now,
	}); err != nil {
		logger.Error("failed to record reminder delivery", "recipient_id", recipientID, "error", err)
	}

	return errors.Join(errs...)
}

func (s *Scheduler) markTick(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = at
}

// LastTick is the time of the most recent scan, zero before the first.
func (s *Scheduler) LastTick() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}
