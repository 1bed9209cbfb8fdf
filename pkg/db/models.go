package db

import (
	"time"

	"gorm.io/datatypes"
)

// Reminder categories. Motivation content is delivered through the
// per-user MotivationSchedule rather than per-reminder schedules.
const (
	CategoryHabits     = "habits"
	CategoryFood       = "food"
	CategoryMotivation = "motivation"
	CategoryWishlist   = "wishlist"

	// CategoryUnknown is the stats bucket for actions on events whose
	// reminder was deleted before the tap arrived.
	CategoryUnknown = "unknown"
)

// Event types stored on a ledger row.
const (
	EventShown  = "shown"
	EventDone   = "done"
	EventSkip   = "skip"
	EventSeen   = "seen"
	EventSnooze = "snooze"
)

type Reminder struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index:idx_reminder_user_category"`
	Category  string `gorm:"not null;index:idx_reminder_user_category"`
	Title     string `gorm:"not null"`
	Body      string
	MediaKind string
	MediaRef  string
	Enabled   bool `gorm:"not null;default:true"`
	Position  int  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReminderSchedule is the one-to-one firing rule of a reminder. Times holds
// the validated "HH:MM" set for specific_times schedules as a JSON array.
type ReminderSchedule struct {
	ID              uint   `gorm:"primaryKey"`
	ReminderID      uint   `gorm:"not null;uniqueIndex:idx_schedule_reminder"`
	ScheduleType    string `gorm:"not null"`
	IntervalMinutes int    `gorm:"not null;default:0"`
	Times           datatypes.JSON
	ActiveFrom      string
	ActiveTo        string
	Timezone        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MotivationSchedule is the per-user firing rule for motivation content.
// Exactly one row per user; the content reminders themselves carry no
// schedule.
type MotivationSchedule struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          int64  `gorm:"not null;uniqueIndex:idx_motivation_user"`
	ScheduleType    string `gorm:"not null"`
	IntervalMinutes int    `gorm:"not null;default:0"`
	Times           datatypes.JSON
	ActiveFrom      string
	ActiveTo        string
	Timezone        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReminderEvent is one ledger row per delivered instance. CallbackHash is
// the idempotency fingerprint; the unique index on it makes slot claiming
// atomic. ReminderID is 0 for motivation slot-probe rows. Once ActionAt is
// set the row is terminal.
type ReminderEvent struct {
	ID           uint      `gorm:"primaryKey"`
	ReminderID   uint      `gorm:"not null;index"`
	UserID       int64     `gorm:"not null;index"`
	EventType    string    `gorm:"not null"`
	ShownAt      time.Time `gorm:"not null"`
	ActionAt     *time.Time
	SnoozeUntil  *time.Time `gorm:"index"`
	MessageID    int        `gorm:"not null;default:0"`
	CallbackHash string     `gorm:"not null;uniqueIndex:idx_event_callback_hash"`
}

// DailyStat carries monotonic per-(user, date, category) counters, created
// lazily on first increment and never decremented.
type DailyStat struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      int64  `gorm:"not null;uniqueIndex:idx_stat_user_date_category"`
	Date        string `gorm:"not null;uniqueIndex:idx_stat_user_date_category"`
	Category    string `gorm:"not null;uniqueIndex:idx_stat_user_date_category"`
	ShownCount  int    `gorm:"not null;default:0"`
	DoneCount   int    `gorm:"not null;default:0"`
	SkipCount   int    `gorm:"not null;default:0"`
	SnoozeCount int    `gorm:"not null;default:0"`
}

func (DailyStat) TableName() string {
	return "reminder_stats_daily"
}
