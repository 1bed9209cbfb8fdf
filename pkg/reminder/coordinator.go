package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"github.com/vvolodin/tg-care-reminder/pkg/logger"
)

// KeyboardKind selects which action buttons the notifier renders under a
// delivered reminder.
type KeyboardKind string

const (
	KeyboardHabitActions      KeyboardKind = "habit"
	KeyboardMotivationActions KeyboardKind = "motivation"
)

// Keyboard tells the notifier which actions to offer for which event.
type Keyboard struct {
	Kind    KeyboardKind
	EventID uint
}

// Notifier is the outbound transport. The engine stores the returned
// message ID on the event but never depends on it for correctness; retries
// are the transport's business, not the engine's.
type Notifier interface {
	Send(ctx context.Context, userID int64, text string, kb Keyboard) (int, error)
	SendMedia(ctx context.Context, userID int64, kind, ref, caption string, kb Keyboard) (int, error)
}

// ActionResult is what a user action produced, with the reminder loaded for
// rendering. Reminder is nil when the definition was deleted meanwhile.
type ActionResult struct {
	Event    *db.ReminderEvent
	Reminder *db.Reminder
}

// Coordinator checks schedules, claims delivery slots and sends due
// reminders and expired snoozes, and routes user actions to the ledger.
type Coordinator struct {
	catalog  *Catalog
	ledger   *Ledger
	stats    *Stats
	notifier Notifier
}

func NewCoordinator(catalog *Catalog, ledger *Ledger, stats *Stats, notifier Notifier) *Coordinator {
	return &Coordinator{catalog: catalog, ledger: ledger, stats: stats, notifier: notifier}
}

// timeLabel formats now as "HH:MM" in the schedule's override zone when one
// is set. A bad zone name falls back to the instant as given.
func timeLabel(now time.Time, timezone string) string {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return now.In(loc).Format("15:04")
		}
		logger.Error("invalid schedule timezone", "timezone", timezone)
	}
	return now.Format("15:04")
}

// CheckDue delivers every reminder of the category that is due at now.
// Safe to invoke repeatedly with the same now: slots that were already
// claimed are skipped silently. Per-reminder failures are logged and the
// slot is skipped for this tick only.
func (c *Coordinator) CheckDue(ctx context.Context, userID int64, category string, now time.Time) error {
	if category == db.CategoryMotivation {
		return c.checkMotivation(ctx, userID, now)
	}

	rows, err := c.catalog.ListEnabled(userID, category)
	if err != nil {
		return err
	}

	for _, row := range rows {
		sched, ok, err := c.catalog.GetSchedule(row.ID)
		if err != nil {
			logger.Error("failed to load schedule", "user_id", userID, "reminder_id", row.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if !ShouldFire(sched, timeLabel(now, sched.Timezone)) {
			continue
		}

		eventID, claimed, err := c.ledger.TryClaimSlot(row.ID, userID, now)
		if err != nil {
			logger.Error("failed to claim reminder slot", "user_id", userID, "reminder_id", row.ID, "error", err)
			continue
		}
		if !claimed {
			continue
		}

		logger.Info("reminder shown", "user_id", userID, "reminder_id", row.ID, "event_id", eventID, "category", category)
		c.deliver(ctx, userID, eventID, row, now)
	}
	return nil
}

// CheckSnoozeExpiry re-delivers reminders whose snooze window has elapsed.
// Each re-delivery claims a fresh slot keyed by now; the original snoozed
// row is left untouched.
func (c *Coordinator) CheckSnoozeExpiry(ctx context.Context, userID int64, now time.Time) error {
	events, err := c.ledger.ListExpiredSnoozes(userID, now)
	if err != nil {
		return err
	}

	for _, event := range events {
		row, err := c.catalog.Get(userID, event.ReminderID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.Error("failed to load reminder for snooze re-delivery", "user_id", userID, "reminder_id", event.ReminderID, "error", err)
			}
			continue
		}

		eventID, claimed, err := c.ledger.TryClaimSlot(row.ID, userID, now)
		if err != nil {
			logger.Error("failed to claim snooze re-delivery slot", "user_id", userID, "reminder_id", row.ID, "error", err)
			continue
		}
		if !claimed {
			continue
		}

		logger.Info("snoozed reminder re-shown", "user_id", userID, "reminder_id", row.ID, "event_id", eventID)
		c.deliver(ctx, userID, eventID, *row, now)
	}
	return nil
}

// deliver notifies and counts. A send failure after a successful claim does
// not un-claim the slot.
func (c *Coordinator) deliver(ctx context.Context, userID int64, eventID uint, row db.Reminder, now time.Time) {
	kb := Keyboard{Kind: KeyboardHabitActions, EventID: eventID}
	if row.Category == db.CategoryMotivation {
		kb.Kind = KeyboardMotivationActions
	}

	var messageID int
	var err error
	if row.MediaKind != "" && row.MediaRef != "" {
		caption := row.Title
		if row.Body != "" {
			caption = row.Body
		}
		messageID, err = c.notifier.SendMedia(ctx, userID, row.MediaKind, row.MediaRef, caption, kb)
	} else {
		messageID, err = c.notifier.Send(ctx, userID, FormatReminderText(row), kb)
	}
	if err != nil {
		logger.Error("failed to send reminder", "user_id", userID, "reminder_id", row.ID, "event_id", eventID, "error", err)
		return
	}

	if err := c.ledger.SetMessageID(eventID, messageID); err != nil {
		logger.Error("failed to store message id", "event_id", eventID, "error", err)
	}
	if err := c.stats.Increment(userID, DateOf(now), row.Category, StatShown); err != nil {
		logger.Error("failed to count shown reminder", "user_id", userID, "category", row.Category, "error", err)
	}
}

// RecordAction applies a done/skip/seen tap and counts it. Duplicate taps
// surface ErrAlreadyActioned, which callers treat as benign.
func (c *Coordinator) RecordAction(userID int64, eventID uint, action string, now time.Time) (*ActionResult, error) {
	event, err := c.ledger.RecordAction(eventID, userID, action, now)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Event: event}
	row, err := c.catalog.Get(userID, event.ReminderID)
	if err == nil {
		result.Reminder = row
	}

	category := db.CategoryUnknown
	if result.Reminder != nil {
		category = result.Reminder.Category
	}
	field := StatDone
	if action == ActionSkip {
		field = StatSkip
	}
	if err := c.stats.Increment(userID, DateOf(now), category, field); err != nil {
		logger.Error("failed to count reminder action", "user_id", userID, "event_id", eventID, "error", err)
	}
	return result, nil
}

// Snooze defers the event's reminder by the given minutes.
func (c *Coordinator) Snooze(userID int64, eventID uint, minutes int, now time.Time) (*ActionResult, error) {
	event, err := c.ledger.ScheduleSnooze(eventID, userID, minutes, now)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Event: event}
	row, err := c.catalog.Get(userID, event.ReminderID)
	if err == nil {
		result.Reminder = row
	}

	category := db.CategoryUnknown
	if result.Reminder != nil {
		category = result.Reminder.Category
	}
	if err := c.stats.Increment(userID, DateOf(now), category, StatSnooze); err != nil {
		logger.Error("failed to count reminder snooze", "user_id", userID, "event_id", eventID, "error", err)
	}
	return result, nil
}
