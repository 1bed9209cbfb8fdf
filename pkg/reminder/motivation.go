package reminder

import (
	"context"
	"math/rand"
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"github.com/vvolodin/tg-care-reminder/pkg/logger"
)

// checkMotivation runs the motivation delivery for one user. Because the
// content pick is random, the slot itself is claimed with a probe row before
// anything is chosen, and the chosen item is then claimed like any other
// delivery. Losing either claim means another sweep already handled the slot
// and nothing is sent.
func (c *Coordinator) checkMotivation(ctx context.Context, userID int64, now time.Time) error {
	sched, ok, err := c.catalog.GetMotivationSchedule(userID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if !ShouldFire(sched, timeLabel(now, sched.Timezone)) {
		return nil
	}

	claimed, err := c.ledger.TryClaimMotivationSlot(userID, now)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	items, err := c.catalog.ListEnabled(userID, db.CategoryMotivation)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	chosen := items[rand.Intn(len(items))]

	// The content claim can lose only if this content row already has an
	// event at this literal instant; the probe above already recorded the
	// slot as processed, so no retry re-selects on this tick.
	eventID, claimed, err := c.ledger.TryClaimSlot(chosen.ID, userID, now)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	logger.Info("motivation shown", "user_id", userID, "reminder_id", chosen.ID, "event_id", eventID)
	c.deliver(ctx, userID, eventID, chosen, now)
	return nil
}
