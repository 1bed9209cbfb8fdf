package reminder

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Actions a user can take on a delivered reminder.
const (
	ActionDone = db.EventDone
	ActionSkip = db.EventSkip
	ActionSeen = db.EventSeen
)

const callbackHashLen = 16

// Ledger owns the delivery event rows and their idempotency and
// action-state invariants. The unique index on callback_hash is the only
// concurrency primitive: claiming a slot is a single conditional insert, so
// concurrent sweeps need no locking.
type Ledger struct {
	gdb *gorm.DB
}

func NewLedger(gdb *gorm.DB) *Ledger {
	return &Ledger{gdb: gdb}
}

// CallbackHash fingerprints one (reminder, user, instant) delivery slot.
func CallbackHash(reminderID uint, userID int64, instant string) string {
	return truncatedHash(fmt.Sprintf("%d:%d:%s", reminderID, userID, instant))
}

// motivationHash fingerprints the per-user motivation slot itself, before a
// content item is chosen. The namespace keeps probe hashes disjoint from
// content-event hashes.
func motivationHash(userID int64, instant string) string {
	return truncatedHash(fmt.Sprintf("motivation:%d:%s", userID, instant))
}

func truncatedHash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:callbackHashLen]
}

// Instant renders the timestamp the slot hash is derived from.
func Instant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TryClaimSlot inserts a shown event for the slot. claimed is false without
// error when the slot was already taken, which is the expected steady-state
// outcome on duplicate ticks.
func (l *Ledger) TryClaimSlot(reminderID uint, userID int64, shownAt time.Time) (uint, bool, error) {
	hash := CallbackHash(reminderID, userID, Instant(shownAt))
	return l.claim(reminderID, userID, shownAt, hash)
}

// TryClaimMotivationSlot records the motivation slot probe. Probe rows use
// reminder ID 0 and never carry actions.
func (l *Ledger) TryClaimMotivationSlot(userID int64, shownAt time.Time) (bool, error) {
	hash := motivationHash(userID, Instant(shownAt))
	_, claimed, err := l.claim(0, userID, shownAt, hash)
	return claimed, err
}

func (l *Ledger) claim(reminderID uint, userID int64, shownAt time.Time, hash string) (uint, bool, error) {
	event := db.ReminderEvent{
		ReminderID:   reminderID,
		UserID:       userID,
		EventType:    db.EventShown,
		ShownAt:      shownAt,
		CallbackHash: hash,
	}
	res := l.gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "callback_hash"}},
		DoNothing: true,
	}).Create(&event)
	if res.Error != nil {
		return 0, false, fmt.Errorf("failed to claim slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return event.ID, true, nil
}

// GetEvent loads the user's event.
func (l *Ledger) GetEvent(eventID uint, userID int64) (*db.ReminderEvent, error) {
	var event db.ReminderEvent
	err := l.gdb.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &event, nil
}

// RecordAction transitions a pending event to its terminal state. The
// update is guarded on action_at still being unset, so of two concurrent
// taps exactly one wins and the other gets ErrAlreadyActioned.
func (l *Ledger) RecordAction(eventID uint, userID int64, action string, now time.Time) (*db.ReminderEvent, error) {
	event, err := l.GetEvent(eventID, userID)
	if err != nil {
		return nil, err
	}
	if event.ActionAt != nil {
		return nil, ErrAlreadyActioned
	}

	res := l.gdb.Model(&db.ReminderEvent{}).
		Where("id = ? AND action_at IS NULL", eventID).
		Updates(map[string]any{"event_type": action, "action_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record action: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyActioned
	}

	event.EventType = action
	event.ActionAt = &now
	return event, nil
}

// ScheduleSnooze marks the event snoozed until now+minutes. The row becomes
// terminal; re-delivery after expiry creates a fresh row, preserving the
// full audit history.
func (l *Ledger) ScheduleSnooze(eventID uint, userID int64, minutes int, now time.Time) (*db.ReminderEvent, error) {
	if minutes < MinIntervalMinutes {
		return nil, ErrInvalidDuration
	}

	event, err := l.GetEvent(eventID, userID)
	if err != nil {
		return nil, err
	}
	if event.ActionAt != nil {
		return nil, ErrAlreadyActioned
	}

	until := now.Add(time.Duration(minutes) * time.Minute)
	res := l.gdb.Model(&db.ReminderEvent{}).
		Where("id = ? AND action_at IS NULL", eventID).
		Updates(map[string]any{
			"event_type":   db.EventSnooze,
			"action_at":    now,
			"snooze_until": until,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to schedule snooze: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyActioned
	}

	event.EventType = db.EventSnooze
	event.ActionAt = &now
	event.SnoozeUntil = &until
	return event, nil
}

// ListExpiredSnoozes returns snoozed events whose window has elapsed, whose
// reminder is still enabled, and whose re-delivery has not happened yet: a
// later shown event for the same reminder marks the snooze as served.
func (l *Ledger) ListExpiredSnoozes(userID int64, now time.Time) ([]db.ReminderEvent, error) {
	var events []db.ReminderEvent
	err := l.gdb.
		Joins("JOIN reminders ON reminders.id = reminder_events.reminder_id").
		Where("reminder_events.user_id = ?", userID).
		Where("reminder_events.event_type = ?", db.EventSnooze).
		Where("reminder_events.snooze_until IS NOT NULL AND reminder_events.snooze_until <= ?", now).
		Where("reminders.enabled = ?", true).
		Where(`NOT EXISTS (
			SELECT 1 FROM reminder_events later
			WHERE later.reminder_id = reminder_events.reminder_id
			  AND later.user_id = reminder_events.user_id
			  AND later.id <> reminder_events.id
			  AND later.shown_at >= reminder_events.snooze_until
		)`).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired snoozes: %w", err)
	}
	return events, nil
}

// SetMessageID stores the transport message handle on the event. Delivery
// correctness never depends on it.
func (l *Ledger) SetMessageID(eventID uint, messageID int) error {
	return l.gdb.Model(&db.ReminderEvent{}).
		Where("id = ?", eventID).
		Update("message_id", messageID).Error
}
