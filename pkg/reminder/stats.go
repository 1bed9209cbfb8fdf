package reminder

import (
	"fmt"
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stat counter columns. Values are column names and must stay in sync with
// db.DailyStat.
const (
	StatShown  = "shown_count"
	StatDone   = "done_count"
	StatSkip   = "skip_count"
	StatSnooze = "snooze_count"
)

// Stats maintains the per-(user, date, category) monotonic counters.
type Stats struct {
	gdb *gorm.DB
}

func NewStats(gdb *gorm.DB) *Stats {
	return &Stats{gdb: gdb}
}

// DateOf renders the stats day key for an instant.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Increment bumps one counter, creating the row lazily on first use.
func (s *Stats) Increment(userID int64, date, category, field string) error {
	switch field {
	case StatShown, StatDone, StatSkip, StatSnooze:
	default:
		return fmt.Errorf("unknown stat field %q", field)
	}

	row := db.DailyStat{UserID: userID, Date: date, Category: category}
	switch field {
	case StatShown:
		row.ShownCount = 1
	case StatDone:
		row.DoneCount = 1
	case StatSkip:
		row.SkipCount = 1
	case StatSnooze:
		row.SnoozeCount = 1
	}

	err := s.gdb.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "category"}},
		DoUpdates: clause.Assignments(map[string]any{
			field: gorm.Expr(field + " + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	return nil
}

// DailyFor returns the user's counters for one day across categories.
func (s *Stats) DailyFor(userID int64, date string) ([]db.DailyStat, error) {
	var rows []db.DailyStat
	err := s.gdb.Where("user_id = ? AND date = ?", userID, date).
		Order("category").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	return rows, nil
}
