package reminder

import (
	"fmt"
	"time"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
)

// Message texts for delivered reminders and their outcomes. The transport
// layer renders keyboards; texts live here next to the state machine that
// produces them.

func FormatReminderText(row db.Reminder) string {
	text := "🔔 " + row.Title
	if row.Body != "" {
		text += "\n\n" + row.Body
	}
	return text
}

func FormatDoneText(row *db.Reminder) string {
	return "✅ Done: " + titleOf(row)
}

func FormatSkippedText(row *db.Reminder) string {
	return "❌ Skipped: " + titleOf(row)
}

func FormatSeenText(row *db.Reminder) string {
	return "👀 Seen: " + titleOf(row)
}

func FormatSnoozedText(row *db.Reminder, until time.Time) string {
	return fmt.Sprintf("⏰ Snoozed until %s: %s", until.Format("15:04"), titleOf(row))
}

func titleOf(row *db.Reminder) string {
	if row == nil {
		return "reminder"
	}
	return row.Title
}
