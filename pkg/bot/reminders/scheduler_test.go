package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []Notification
	errOf map[int64]error
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.errOf[notification.RecipientID]
}

func strPtr(v string) *string { return &v }

func insert(t *testing.T, store *db.ReminderStore, r db.Reminder) {
	t.Helper()
	require.NoError(t, store.Insert(context.Background(), &r))
}

func newTestScheduler(store Store, notifier Notifier, now time.Time) *Scheduler {
	s := NewScheduler(store, notifier, time.Second)
	s.now = func() time.Time { return now }
	return s
}

func TestTickGroupsByRecipientAndDeletes(t *testing.T) {
	store := testutil.SetupReminderStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	insert(t, store, db.Reminder{ID: "a", DueAt: now.Add(-3 * time.Minute), Message: "stretch", RecipientID: 2, OriginURL: strPtr("https://t.me/c/1/10")})
	insert(t, store, db.Reminder{ID: "b", DueAt: now.Add(-2 * time.Minute), Message: "water", RecipientID: 1})
	insert(t, store, db.Reminder{ID: "c", DueAt: now.Add(-time.Minute), Message: "call", RecipientID: 2})
	insert(t, store, db.Reminder{ID: "later", DueAt: now.Add(time.Hour), Message: "sleep", RecipientID: 2})

	notifier := &recordingNotifier{}
	stats, err := newTestScheduler(store, notifier, now).Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, TickStats{Due: 3, Recipients: 2, Delivered: 2, Deleted: 3}, stats)
	require.Len(t, notifier.sent, 2)

	first := notifier.sent[0]
	assert.Equal(t, int64(2), first.RecipientID)
	assert.Equal(t, []Entry{{ReminderID: "a", Message: "stretch"}, {ReminderID: "c", Message: "call"}}, first.Entries)
	assert.Equal(t, []Link{{ReminderID: "a", URL: "https://t.me/c/1/10"}}, first.Links)

	second := notifier.sent[1]
	assert.Equal(t, int64(1), second.RecipientID)
	assert.Empty(t, second.Links)

	remaining, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "later", remaining[0].ID)
}

func TestTickUnreachableRecipientIsSwallowed(t *testing.T) {
	store := testutil.SetupReminderStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	insert(t, store, db.Reminder{ID: "a", DueAt: now, Message: "x", RecipientID: 5})

	notifier := &recordingNotifier{errOf: map[int64]error{
		5: fmt.Errorf("send: %w", ErrRecipientUnreachable),
	}}
	stats, err := newTestScheduler(store, notifier, now).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unreachable)
	assert.Equal(t, int64(1), stats.Deleted)

	logs, err := store.DeliveryLogs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, db.DeliveryUnreachable, logs[0].Status)
}

func TestTickFailureDoesNotBlockOtherRecipients(t *testing.T) {
	store := testutil.SetupReminderStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	insert(t, store, db.Reminder{ID: "a", DueAt: now.Add(-time.Minute), Message: "x", RecipientID: 1})
	insert(t, store, db.Reminder{ID: "b", DueAt: now, Message: "y", RecipientID: 2})

	boom := errors.New("telegram down")
	notifier := &recordingNotifier{errOf: map[int64]error{1: boom}}
	stats, err := newTestScheduler(store, notifier, now).Tick(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Delivered)
	require.Len(t, notifier.sent, 2)

	remaining, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining, "reminders fire once even when delivery fails")

	logs, err := store.DeliveryLogs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, db.DeliveryFailed, logs[0].Status)
	assert.Equal(t, "telegram down", logs[0].Error)

	var ids []string
	require.NoError(t, json.Unmarshal(logs[0].ReminderIDs, &ids))
	assert.Equal(t, []string{"a"}, ids)
}

func TestTickWithNothingDue(t *testing.T) {
	store := testutil.SetupReminderStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	s := newTestScheduler(store, notifier, now)

	stats, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TickStats{}, stats)
	assert.Empty(t, notifier.sent)
	assert.True(t, s.LastTick().Equal(now))
}

type failingStore struct {
	Store
}

func (failingStore) Due(context.Context, time.Time) ([]db.Reminder, error) {
	return nil, errors.New("connection refused")
}

func TestTickStoreFailure(t *testing.T) {
	s := newTestScheduler(failingStore{}, &recordingNotifier{}, time.Now())
	_, err := s.Tick(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

// deleteFailingStore fails DeleteMany for the reminders of one recipient.
type deleteFailingStore struct {
	*db.ReminderStore
	failIDs map[string]bool
}

func (s deleteFailingStore) DeleteMany(ctx context.Context, filter db.ReminderFilter) (int64, error) {
	for _, id := range filter.IDs {
		if s.failIDs[id] {
			return 0, errors.New("database is locked")
		}
	}
	return s.ReminderStore.DeleteMany(ctx, filter)
}

func TestTickDeleteFailureDoesNotBlockOtherRecipients(t *testing.T) {
	store := testutil.SetupReminderStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	insert(t, store, db.Reminder{ID: "a", DueAt: now.Add(-time.Minute), Message: "x", RecipientID: 1})
	insert(t, store, db.Reminder{ID: "b", DueAt: now, Message: "y", RecipientID: 2})

	notifier := &recordingNotifier{}
	s := newTestScheduler(deleteFailingStore{ReminderStore: store, failIDs: map[string]bool{"a": true}}, notifier, now)
	stats, err := s.Tick(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "delete reminders of recipient 1")
	assert.Equal(t, 2, stats.Delivered)
	assert.Equal(t, int64(1), stats.Deleted)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, int64(2), notifier.sent[1].RecipientID)

	remaining, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "a", remaining[0].ID)

	logs, err := store.DeliveryLogs(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, db.DeliveryDelivered, logs[0].Status)
}

func TestBuildNotificationCapsLinks(t *testing.T) {
	batch := make([]db.Reminder, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, db.Reminder{ID: fmt.Sprintf("r%d", i), Message: "m", OriginURL: strPtr("https://t.me/x/1")})
	}
	n := buildNotification(1, batch)
	assert.Len(t, n.Entries, 25)
	assert.Len(t, n.Links, MaxLinks)
	assert.Equal(t, "r19", n.Links[MaxLinks-1].ReminderID)
}

func TestSchedulerStartStop(t *testing.T) {
	store := testutil.SetupReminderStore(t)
	insert(t, store, db.Reminder{ID: "a", DueAt: time.Now().Add(-time.Minute), Message: "x", RecipientID: 1})

	delivered := make(chan Notification, 1)
	s := NewScheduler(store, NotifierFunc(func(_ context.Context, n Notification) error {
		select {
		case delivered <- n:
		default:
		}
		return nil
	}), 5*time.Millisecond)

	s.Start(context.Background())
	select {
	case n := <-delivered:
		assert.Equal(t, int64(1), n.RecipientID)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not deliver in time")
	}
	s.Stop()
	assert.False(t, s.LastTick().IsZero())
}

func TestSchedulerSecondStartIsNoop(t *testing.T) {
	store := testutil.SetupReminderStore(t)
	s := NewScheduler(store, &recordingNotifier{}, time.Hour)

	s.Start(context.Background())
	s.mu.RLock()
	firstDone := s.done
	s.mu.RUnlock()

	s.Start(context.Background())
	s.mu.RLock()
	secondDone := s.done
	s.mu.RUnlock()
	assert.Equal(t, firstDone, secondDone, "second Start must not replace the running loop")

	s.Stop()
	select {
	case <-firstDone:
	case <-time.After(time.Second):
		t.Fatal("Stop did not end the loop")
	}

	s.Start(context.Background())
	s.mu.RLock()
	restarted := s.done
	s.mu.RUnlock()
	assert.NotEqual(t, firstDone, restarted, "Start after Stop runs a new loop")
	s.Stop()
}

func TestNewIDIsMonotonic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := NewID(now)
	require.Len(t, prev, 26)
	for i := 0; i < 100; i++ {
		next := NewID(now)
		assert.Greater(t, next, prev)
		prev = next
	}
}
