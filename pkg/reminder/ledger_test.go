package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"github.com/vvolodin/tg-care-reminder/pkg/internal/testutil"
)

func createTestReminder(t *testing.T, cat *Catalog, userID int64, category, title string) *db.Reminder {
	t.Helper()
	row, err := cat.Create(NewReminder{UserID: userID, Category: category, Title: title})
	if err != nil {
		t.Fatalf("failed to create reminder: %v", err)
	}
	return row
}

func TestTryClaimSlotClaimsExactlyOnce(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 1, db.CategoryHabits, "Drink water")

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	eventID, claimed, err := ledger.TryClaimSlot(row.ID, 1, now)
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if !claimed || eventID == 0 {
		t.Fatalf("expected first claim to succeed, got claimed=%v id=%d", claimed, eventID)
	}

	_, claimed, err = ledger.TryClaimSlot(row.ID, 1, now)
	if err != nil {
		t.Fatalf("second claim errored: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim for identical arguments to fail")
	}

	var count int64
	if err := gdb.Model(&db.ReminderEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one event row, got %d", count)
	}
}

func TestTryClaimSlotDistinctInstants(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 1, db.CategoryHabits, "Stretch")

	first := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	if _, claimed, err := ledger.TryClaimSlot(row.ID, 1, first); err != nil || !claimed {
		t.Fatalf("first instant claim failed: claimed=%v err=%v", claimed, err)
	}
	if _, claimed, err := ledger.TryClaimSlot(row.ID, 1, second); err != nil || !claimed {
		t.Fatalf("second instant claim failed: claimed=%v err=%v", claimed, err)
	}
}

func TestTryClaimMotivationSlotNamespace(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 7, db.CategoryMotivation, "Keep going")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	claimed, err := ledger.TryClaimMotivationSlot(7, now)
	if err != nil || !claimed {
		t.Fatalf("probe claim failed: claimed=%v err=%v", claimed, err)
	}

	// The content claim at the same instant must not collide with the probe.
	if _, claimed, err := ledger.TryClaimSlot(row.ID, 7, now); err != nil || !claimed {
		t.Fatalf("content claim failed: claimed=%v err=%v", claimed, err)
	}

	claimed, err = ledger.TryClaimMotivationSlot(7, now)
	if err != nil {
		t.Fatalf("duplicate probe claim errored: %v", err)
	}
	if claimed {
		t.Fatal("expected duplicate probe claim to fail")
	}
}

func TestRecordAction(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 1, db.CategoryHabits, "Run")

	shownAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	eventID, _, err := ledger.TryClaimSlot(row.ID, 1, shownAt)
	if err != nil {
		t.Fatalf("failed to claim slot: %v", err)
	}

	actionAt := shownAt.Add(5 * time.Minute)
	event, err := ledger.RecordAction(eventID, 1, ActionDone, actionAt)
	if err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	if event.EventType != db.EventDone {
		t.Fatalf("expected event type %q, got %q", db.EventDone, event.EventType)
	}
	if event.ActionAt == nil || !event.ActionAt.Equal(actionAt) {
		t.Fatalf("expected action_at %v, got %v", actionAt, event.ActionAt)
	}

	// Duplicate taps get the benign already-actioned error and the stored
	// type stays the first caller's.
	if _, err := ledger.RecordAction(eventID, 1, ActionSkip, actionAt.Add(time.Minute)); !errors.Is(err, ErrAlreadyActioned) {
		t.Fatalf("expected ErrAlreadyActioned, got %v", err)
	}
	var stored db.ReminderEvent
	if err := gdb.First(&stored, eventID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	if stored.EventType != db.EventDone {
		t.Fatalf("expected stored type %q, got %q", db.EventDone, stored.EventType)
	}
}

func TestRecordActionNotFound(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 1, db.CategoryHabits, "Meditate")

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	eventID, _, err := ledger.TryClaimSlot(row.ID, 1, now)
	if err != nil {
		t.Fatalf("failed to claim slot: %v", err)
	}

	if _, err := ledger.RecordAction(9999, 1, ActionDone, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing event, got %v", err)
	}
	// Another user's event is indistinguishable from a missing one.
	if _, err := ledger.RecordAction(eventID, 2, ActionDone, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign event, got %v", err)
	}
}

func TestScheduleSnooze(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 1, db.CategoryHabits, "Read")

	shownAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	eventID, _, err := ledger.TryClaimSlot(row.ID, 1, shownAt)
	if err != nil {
		t.Fatalf("failed to claim slot: %v", err)
	}

	// Below the minimum: rejected before any write.
	if _, err := ledger.ScheduleSnooze(eventID, 1, 14, shownAt); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	var pending db.ReminderEvent
	if err := gdb.First(&pending, eventID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	if pending.ActionAt != nil {
		t.Fatal("rejected snooze must not touch the event")
	}

	event, err := ledger.ScheduleSnooze(eventID, 1, 60, shownAt)
	if err != nil {
		t.Fatalf("ScheduleSnooze failed: %v", err)
	}
	wantUntil := time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)
	if event.SnoozeUntil == nil || !event.SnoozeUntil.Equal(wantUntil) {
		t.Fatalf("expected snooze_until %v, got %v", wantUntil, event.SnoozeUntil)
	}
	if event.EventType != db.EventSnooze {
		t.Fatalf("expected event type %q, got %q", db.EventSnooze, event.EventType)
	}

	// A snooze never reopens the row for further action.
	if _, err := ledger.RecordAction(eventID, 1, ActionDone, shownAt.Add(time.Minute)); !errors.Is(err, ErrAlreadyActioned) {
		t.Fatalf("expected ErrAlreadyActioned after snooze, got %v", err)
	}
	if _, err := ledger.ScheduleSnooze(eventID, 1, 30, shownAt.Add(time.Minute)); !errors.Is(err, ErrAlreadyActioned) {
		t.Fatalf("expected ErrAlreadyActioned for second snooze, got %v", err)
	}
}

func TestListExpiredSnoozes(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 1, db.CategoryHabits, "Walk")

	shownAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	eventID, _, err := ledger.TryClaimSlot(row.ID, 1, shownAt)
	if err != nil {
		t.Fatalf("failed to claim slot: %v", err)
	}
	if _, err := ledger.ScheduleSnooze(eventID, 1, 60, shownAt); err != nil {
		t.Fatalf("failed to snooze: %v", err)
	}

	// Before expiry: nothing.
	events, err := ledger.ListExpiredSnoozes(1, time.Date(2026, 1, 1, 12, 59, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListExpiredSnoozes failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no expired snoozes before the window, got %d", len(events))
	}

	// After expiry: exactly the snoozed event.
	after := time.Date(2026, 1, 1, 13, 1, 0, 0, time.UTC)
	events, err = ledger.ListExpiredSnoozes(1, after)
	if err != nil {
		t.Fatalf("ListExpiredSnoozes failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != eventID {
		t.Fatalf("expected the snoozed event, got %v", events)
	}

	// A later shown event for the same reminder marks the snooze served.
	if _, claimed, err := ledger.TryClaimSlot(row.ID, 1, after); err != nil || !claimed {
		t.Fatalf("re-delivery claim failed: claimed=%v err=%v", claimed, err)
	}
	events, err = ledger.ListExpiredSnoozes(1, after.Add(time.Minute))
	if err != nil {
		t.Fatalf("ListExpiredSnoozes failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected served snooze to drop out, got %d", len(events))
	}
}

func TestListExpiredSnoozesSkipsDisabledReminder(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ledger := NewLedger(gdb)
	cat := NewCatalog(gdb)
	row := createTestReminder(t, cat, 1, db.CategoryHabits, "Journal")

	shownAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	eventID, _, err := ledger.TryClaimSlot(row.ID, 1, shownAt)
	if err != nil {
		t.Fatalf("failed to claim slot: %v", err)
	}
	if _, err := ledger.ScheduleSnooze(eventID, 1, 15, shownAt); err != nil {
		t.Fatalf("failed to snooze: %v", err)
	}
	if _, err := cat.Toggle(1, row.ID); err != nil {
		t.Fatalf("failed to disable reminder: %v", err)
	}

	events, err := ledger.ListExpiredSnoozes(1, shownAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListExpiredSnoozes failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected disabled reminder's snooze to be skipped, got %d", len(events))
	}
}
