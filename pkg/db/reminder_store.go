package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEmptyFilter = errors.New("reminder filter matches every row")

// ReminderFilter narrows store queries. Zero fields are ignored.
type ReminderFilter struct {
	ID          string
	IDs         []string
	RecipientID int64
}

func (f ReminderFilter) empty() bool {
	return f.ID == "" && len(f.IDs) == 0 && f.RecipientID == 0
}

func (f ReminderFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ID != "" {
		q = q.Where("id = ?", f.ID)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.RecipientID != 0 {
		q = q.Where("recipient_id = ?", f.RecipientID)
	}
	return q
}

type ReminderStore struct {
	db *gorm.DB
}

func NewReminderStore(gdb *gorm.DB) *ReminderStore {
	return &ReminderStore{db: gdb}
}

func (s *ReminderStore) Insert(ctx context.Context, reminder *Reminder) error {
	reminder.DueAt = reminder.DueAt.UTC()
	return s.db.WithContext(ctx).Create(reminder).Error
}

// Update writes every column of reminder, inserting it when missing.
func (s *ReminderStore) Update(ctx context.Context, reminder *Reminder) error {
	reminder.DueAt = reminder.DueAt.UTC()
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(reminder).Error
}

// FindOne returns nil without an error when nothing matches.
func (s *ReminderStore) FindOne(ctx context.Context, filter ReminderFilter) (*Reminder, error) {
	if filter.empty() {
		return nil, ErrEmptyFilter
	}
	var reminder Reminder
	err := filter.apply(s.db.WithContext(ctx)).Order("due_at ASC, id ASC").First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (s *ReminderStore) FindMany(ctx context.Context, filter ReminderFilter) ([]Reminder, error) {
	var reminders []Reminder
	err := filter.apply(s.db.WithContext(ctx)).Order("due_at ASC, id ASC").Find(&reminders).Error
	return reminders, err
}

func (s *ReminderStore) All(ctx context.Context) ([]Reminder, error) {
	return s.FindMany(ctx, ReminderFilter{})
}

// Due returns reminders whose due time is at or before now.
func (s *ReminderStore) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	var reminders []Reminder
	err := s.db.WithContext(ctx).
		Where("due_at <= ?", now.UTC()).
		Order("due_at ASC, id ASC").
		Find(&reminders).Error
	return reminders, err
}

// DeleteOne removes the first matching reminder. Deleting a missing
// reminder is not an error.
func (s *ReminderStore) DeleteOne(ctx context.Context, filter ReminderFilter) (bool, error) {
	reminder, err := s.FindOne(ctx, filter)
	if err != nil || reminder == nil {
		return false, err
	}
	res := s.db.WithContext(ctx).Where("id = ?", reminder.ID).Delete(&Reminder{})
	return res.RowsAffected > 0, res.Error
}

func (s *ReminderStore) DeleteMany(ctx context.Context, filter ReminderFilter) (int64, error) {
	if filter.empty() {
		return 0, ErrEmptyFilter
	}
	res := filter.apply(s.db.WithContext(ctx)).Delete(&Reminder{})
	return res.RowsAffected, res.Error
}

// DeliveryAttempt describes one notification sent to a recipient.
type DeliveryAttempt struct {
	RecipientID int64
	ReminderIDs []string
	Status      string
	Err         error
	At          time.Time
}

func (s *ReminderStore) RecordDelivery(ctx context.Context, attempt DeliveryAttempt) error {
	ids, err := json.Marshal(attempt.ReminderIDs)
	if err != nil {
		return err
	}
	entry := DeliveryLog{
		RecipientID: attempt.RecipientID,
		ReminderIDs: datatypes.JSON(ids),
		Status:      attempt.Status,
		AttemptedAt: attempt.At.UTC(),
	}
	if attempt.Err != nil {
		entry.Error = attempt.Err.Error()
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *ReminderStore) DeliveryLogs(ctx context.Context, recipientID int64) ([]DeliveryLog, error) {
	var logs []DeliveryLog
	q := s.db.WithContext(ctx)
	if recipientID != 0 {
		q = q.Where("recipient_id = ?", recipientID)
	}
	err := q.Order("attempted_at ASC, id ASC").Find(&logs).Error
	return logs, err
}

func (s *ReminderStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
