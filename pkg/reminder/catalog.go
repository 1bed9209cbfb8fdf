package reminder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Categories whose reminders carry their own schedules and are swept by
// CheckDue directly. Motivation is driven by the per-user schedule instead.
var ScheduledCategories = []string{db.CategoryHabits, db.CategoryFood, db.CategoryWishlist}

const maxTitleLen = 100

// Catalog is the CRUD store of reminder definitions.
type Catalog struct {
	gdb *gorm.DB
}

func NewCatalog(gdb *gorm.DB) *Catalog {
	return &Catalog{gdb: gdb}
}

// NewReminder describes a reminder to create. Media fields are only used by
// motivation content.
type NewReminder struct {
	UserID    int64
	Category  string
	Title     string
	Body      string
	MediaKind string
	MediaRef  string
}

func (c *Catalog) Create(nr NewReminder) (*db.Reminder, error) {
	title := strings.TrimSpace(nr.Title)
	if title == "" || len([]rune(title)) > maxTitleLen {
		return nil, ErrInvalidTitle
	}

	var maxPosition int
	err := c.gdb.Model(&db.Reminder{}).
		Where("user_id = ? AND category = ?", nr.UserID, nr.Category).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPosition).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute reminder position: %w", err)
	}

	row := db.Reminder{
		UserID:    nr.UserID,
		Category:  nr.Category,
		Title:     title,
		Body:      nr.Body,
		MediaKind: nr.MediaKind,
		MediaRef:  nr.MediaRef,
		Enabled:   true,
		Position:  maxPosition + 1,
	}
	if err := c.gdb.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return &row, nil
}

func (c *Catalog) Get(userID int64, reminderID uint) (*db.Reminder, error) {
	var row db.Reminder
	err := c.gdb.Where("id = ? AND user_id = ?", reminderID, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder: %w", err)
	}
	return &row, nil
}

// List returns the user's reminders in display order.
func (c *Catalog) List(userID int64, category string) ([]db.Reminder, error) {
	var rows []db.Reminder
	err := c.gdb.Where("user_id = ? AND category = ?", userID, category).
		Order("position, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return rows, nil
}

func (c *Catalog) ListEnabled(userID int64, category string) ([]db.Reminder, error) {
	var rows []db.Reminder
	err := c.gdb.Where("user_id = ? AND category = ? AND enabled = ?", userID, category, true).
		Order("position, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled reminders: %w", err)
	}
	return rows, nil
}

// Toggle flips the enabled flag and returns the new state.
func (c *Catalog) Toggle(userID int64, reminderID uint) (bool, error) {
	row, err := c.Get(userID, reminderID)
	if err != nil {
		return false, err
	}
	row.Enabled = !row.Enabled
	if err := c.gdb.Model(&db.Reminder{}).
		Where("id = ?", row.ID).
		Update("enabled", row.Enabled).Error; err != nil {
		return false, fmt.Errorf("failed to toggle reminder: %w", err)
	}
	return row.Enabled, nil
}

// Delete removes the reminder and its schedule. Ledger rows stay for audit.
func (c *Catalog) Delete(userID int64, reminderID uint) error {
	return c.gdb.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", reminderID, userID).Delete(&db.Reminder{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete reminder: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("reminder_id = ?", reminderID).Delete(&db.ReminderSchedule{}).Error; err != nil {
			return fmt.Errorf("failed to delete reminder schedule: %w", err)
		}
		return nil
	})
}

// SetSchedule atomically replaces the reminder's schedule.
func (c *Catalog) SetSchedule(userID int64, reminderID uint, s Schedule) error {
	if !s.Valid() {
		return ErrInvalidSchedule
	}
	if _, err := c.Get(userID, reminderID); err != nil {
		return err
	}
	times, err := s.timesJSON()
	if err != nil {
		return ErrInvalidSchedule
	}

	row := db.ReminderSchedule{
		ReminderID:      reminderID,
		ScheduleType:    string(s.Type),
		IntervalMinutes: s.IntervalMinutes,
		Times:           times,
		ActiveFrom:      s.ActiveFrom,
		ActiveTo:        s.ActiveTo,
		Timezone:        s.Timezone,
	}
	err = c.gdb.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "reminder_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"schedule_type", "interval_minutes", "times", "active_from", "active_to", "timezone", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set schedule: %w", err)
	}
	return nil
}

// GetSchedule loads the reminder's schedule; ok is false when none is set.
func (c *Catalog) GetSchedule(reminderID uint) (Schedule, bool, error) {
	var row db.ReminderSchedule
	err := c.gdb.Where("reminder_id = ?", reminderID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Schedule{}, false, nil
	}
	if err != nil {
		return Schedule{}, false, fmt.Errorf("failed to load schedule: %w", err)
	}
	return scheduleFromRow(row), true, nil
}

// SetMotivationSchedule atomically replaces the user's motivation schedule.
func (c *Catalog) SetMotivationSchedule(userID int64, s Schedule) error {
	if !s.Valid() {
		return ErrInvalidSchedule
	}
	times, err := s.timesJSON()
	if err != nil {
		return ErrInvalidSchedule
	}

	row := db.MotivationSchedule{
		UserID:          userID,
		ScheduleType:    string(s.Type),
		IntervalMinutes: s.IntervalMinutes,
		Times:           times,
		ActiveFrom:      s.ActiveFrom,
		ActiveTo:        s.ActiveTo,
		Timezone:        s.Timezone,
	}
	err = c.gdb.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"schedule_type", "interval_minutes", "times", "active_from", "active_to", "timezone", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set motivation schedule: %w", err)
	}
	return nil
}

func (c *Catalog) GetMotivationSchedule(userID int64) (Schedule, bool, error) {
	var row db.MotivationSchedule
	err := c.gdb.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Schedule{}, false, nil
	}
	if err != nil {
		return Schedule{}, false, fmt.Errorf("failed to load motivation schedule: %w", err)
	}
	return scheduleFromMotivationRow(row), true, nil
}

// ActiveUsers returns the users the periodic sweep must visit: anyone with
// an enabled reminder or a motivation schedule.
func (c *Catalog) ActiveUsers() ([]int64, error) {
	var fromReminders []int64
	err := c.gdb.Model(&db.Reminder{}).
		Where("enabled = ?", true).
		Distinct("user_id").
		Pluck("user_id", &fromReminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder users: %w", err)
	}

	var fromMotivation []int64
	err = c.gdb.Model(&db.MotivationSchedule{}).
		Distinct("user_id").
		Pluck("user_id", &fromMotivation).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list motivation users: %w", err)
	}

	seen := make(map[int64]struct{}, len(fromReminders)+len(fromMotivation))
	users := make([]int64, 0, len(fromReminders)+len(fromMotivation))
	for _, id := range append(fromReminders, fromMotivation...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	return users, nil
}
