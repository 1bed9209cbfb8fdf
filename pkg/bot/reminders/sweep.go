package reminders

import (
	"context"
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"github.com/vvolodin/tg-care-reminder/pkg/logger"
	"github.com/vvolodin/tg-care-reminder/pkg/reminder"
)

// categories visited per user on every tick.
var categories = []string{
	db.CategoryHabits,
	db.CategoryFood,
	db.CategoryWishlist,
	db.CategoryMotivation,
}

// RunCheck is one sweep over all active users: due reminders per category,
// then expired snoozes. now is truncated to the minute so a jittery
// scheduler still hashes every invocation within a minute to the same slot.
// No per-user failure stops the sweep.
func RunCheck(ctx context.Context, coord *reminder.Coordinator, cat *reminder.Catalog, now time.Time) {
	now = now.Truncate(time.Minute)

	users, err := cat.ActiveUsers()
	if err != nil {
		logger.Error("failed to list active users", "error", err)
		return
	}

	for _, userID := range users {
		for _, category := range categories {
			if err := coord.CheckDue(ctx, userID, category, now); err != nil {
				logger.Error("reminder check failed", "user_id", userID, "category", category, "error", err)
			}
		}
		if err := coord.CheckSnoozeExpiry(ctx, userID, now); err != nil {
			logger.Error("snooze expiry check failed", "user_id", userID, "error", err)
		}
	}
}
