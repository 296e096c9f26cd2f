package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/smith3v/tg-reminder-bot/pkg/db"
)

// MaxLinks caps the link buttons attached to one notification.
const MaxLinks = 20

// ErrRecipientUnreachable marks a delivery the recipient refuses, e.g.
// the bot was blocked. It is not reported as a tick failure.
var ErrRecipientUnreachable = errors.New("recipient unreachable")

type Entry struct {
	ReminderID string
	Message    string
}

type Link struct {
	ReminderID string
	URL        string
}

// Notification is every due reminder of one recipient, sent as one message.
type Notification struct {
	RecipientID int64
	Entries     []Entry
	Links       []Link
}

type Store interface {
	Due(ctx context.Context, now time.Time) ([]db.Reminder, error)
	DeleteMany(ctx context.Context, filter db.ReminderFilter) (int64, error)
	RecordDelivery(ctx context.Context, attempt db.DeliveryAttempt) error
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

func buildNotification(recipientID int64, batch []db.Reminder) Notification {
	n := Notification{RecipientID: recipientID, Entries: make([]Entry, 0, len(batch))}
	for _, reminder := range batch {
		n.Entries = append(n.Entries, Entry{ReminderID: reminder.ID, Message: reminder.Message})
		if reminder.OriginURL == nil || *reminder.OriginURL == "" || len(n.Links) >= MaxLinks {
			continue
		}
		n.Links = append(n.Links, Link{ReminderID: reminder.ID, URL: *reminder.OriginURL})
	}
	return n
}

// groupByRecipient keeps recipients in the order they first appear.
func groupByRecipient(due []db.Reminder) ([]int64, map[int64][]db.Reminder) {
	var order []int64
	groups := make(map[int64][]db.Reminder)
	for _, reminder := range due {
		if _, seen := groups[reminder.RecipientID]; !seen {
			order = append(order, reminder.RecipientID)
		}
		groups[reminder.RecipientID] = append(groups[reminder.RecipientID], reminder)
	}
	return order, groups
}
