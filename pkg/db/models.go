package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DeliveryDelivered   = "delivered"
	DeliveryUnreachable = "unreachable"
	DeliveryFailed      = "failed"
)

type Reminder struct {
	ID          string    `gorm:"primaryKey;size:26"`
	DueAt       time.Time `gorm:"not null;index:idx_reminder_due"`
	Message     string    `gorm:"not null"`
	RecipientID int64     `gorm:"not null;index"`
	OriginURL   *string   // link back to the confirmation message, set after it is posted
	CreatedAt   time.Time
}

// DeliveryLog records one notification attempt for a recipient. The
// reminders it covers are deleted whatever the outcome.
type DeliveryLog struct {
	ID          uint           `gorm:"primaryKey"`
	RecipientID int64          `gorm:"not null;index"`
	ReminderIDs datatypes.JSON `gorm:"not null"`
	Status      string         `gorm:"not null"`
	Error       string         `gorm:"not null;default:''"`
	AttemptedAt time.Time      `gorm:"not null;index"`
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&Reminder{}, &DeliveryLog{}}
}
