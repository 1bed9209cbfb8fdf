package db

import (
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/logger"
	"gorm.io/gorm"
)

const EventCleanupInterval = time.Hour

// PruneOldEvents removes ledger rows that no longer participate in any
// state machine: terminal rows (action recorded) older than the cutoff and
// motivation slot-probe rows (reminder_id = 0) past the cutoff. Pending
// rows are kept regardless of age so an open reminder stays actionable.
func PruneOldEvents(gdb *gorm.DB, cutoff time.Time) (int64, error) {
	var deleted int64

	res := gdb.Where("action_at IS NOT NULL AND action_at <= ?", cutoff).Delete(&ReminderEvent{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	res = gdb.Where("reminder_id = 0 AND shown_at <= ?", cutoff).Delete(&ReminderEvent{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	return deleted, nil
}

// RunEventCleanup is one pruning pass; the scheduler in cmd drives it on
// EventCleanupInterval.
func RunEventCleanup(gdb *gorm.DB, retentionDays int, now time.Time) {
	if retentionDays <= 0 {
		return
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	deleted, err := PruneOldEvents(gdb, cutoff)
	if err != nil {
		logger.Error("failed to prune reminder events", "error", err)
		return
	}
	if deleted > 0 {
		logger.Info("pruned reminder events", "deleted", deleted, "cutoff", cutoff)
	}
}
