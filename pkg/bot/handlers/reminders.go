package handlers

import (
	"context"
	"errors"
	"time"

	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"github.com/vvolodin/tg-care-reminder/pkg/logger"
	"github.com/vvolodin/tg-care-reminder/pkg/reminder"
	"github.com/vvolodin/tg-care-reminder/pkg/ui"
)

const alreadyHandledText = "Already handled"

// Handlers routes reminder callback queries to the delivery coordinator.
type Handlers struct {
	coord  *reminder.Coordinator
	ledger *reminder.Ledger
	cat    *reminder.Catalog
}

func New(coord *reminder.Coordinator, ledger *reminder.Ledger, cat *reminder.Catalog) *Handlers {
	return &Handlers{coord: coord, ledger: ledger, cat: cat}
}

// HandleReminderCallback handles every callback under the "rem:" prefix.
func (h *Handlers) HandleReminderCallback(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		logger.Error("invalid update in HandleReminderCallback")
		return
	}
	query := update.CallbackQuery
	userID := query.From.ID

	action, err := ui.ParseCallback(query.Data)
	if err != nil {
		logger.Error("failed to parse reminder callback", "user_id", userID, "data", query.Data, "error", err)
		h.answer(ctx, b, query.ID, "", false)
		return
	}

	now := time.Now().UTC()
	switch action.Kind {
	case ui.ActionDone:
		h.handleAction(ctx, b, query, action.EventID, reminder.ActionDone, now)
	case ui.ActionSkip:
		h.handleAction(ctx, b, query, action.EventID, reminder.ActionSkip, now)
	case ui.ActionSeen:
		h.handleAction(ctx, b, query, action.EventID, reminder.ActionSeen, now)
	case ui.ActionSnoozeMenu:
		h.handleSnoozeMenu(ctx, b, query, action.EventID)
	case ui.ActionSnooze:
		h.handleSnooze(ctx, b, query, action.EventID, action.Minutes, now)
	case ui.ActionSnoozeBack:
		h.handleSnoozeBack(ctx, b, query, action.EventID)
	}
}

func (h *Handlers) handleAction(ctx context.Context, b *telegram.Bot, query *models.CallbackQuery, eventID uint, action string, now time.Time) {
	result, err := h.coord.RecordAction(query.From.ID, eventID, action, now)
	if err != nil {
		h.answerActionError(ctx, b, query, err)
		return
	}
	h.answer(ctx, b, query.ID, "", false)

	logger.Info("reminder action recorded", "user_id", query.From.ID, "event_id", eventID, "action", action)

	var text string
	switch action {
	case reminder.ActionDone:
		text = reminder.FormatDoneText(result.Reminder)
	case reminder.ActionSkip:
		text = reminder.FormatSkippedText(result.Reminder)
	case reminder.ActionSeen:
		text = reminder.FormatSeenText(result.Reminder)
	}
	h.editMessage(ctx, b, query, text, nil)
}

func (h *Handlers) handleSnoozeMenu(ctx context.Context, b *telegram.Bot, query *models.CallbackQuery, eventID uint) {
	event, err := h.ledger.GetEvent(eventID, query.From.ID)
	if err != nil || event.ActionAt != nil {
		h.answer(ctx, b, query.ID, alreadyHandledText, true)
		return
	}
	h.answer(ctx, b, query.ID, "", false)

	keyboard, err := ui.SnoozeDurationKeyboard(eventID)
	if err != nil {
		logger.Error("failed to build snooze keyboard", "event_id", eventID, "error", err)
		return
	}

	text := "⏳ Snooze for how long?"
	if row, err := h.cat.Get(query.From.ID, event.ReminderID); err == nil {
		text = reminder.FormatReminderText(*row) + "\n\n" + text
	}
	h.editMessage(ctx, b, query, text, keyboard)
}

func (h *Handlers) handleSnooze(ctx context.Context, b *telegram.Bot, query *models.CallbackQuery, eventID uint, minutes int, now time.Time) {
	result, err := h.coord.Snooze(query.From.ID, eventID, minutes, now)
	if err != nil {
		if errors.Is(err, reminder.ErrInvalidDuration) {
			h.answer(ctx, b, query.ID, "Minimum snooze is 15 minutes", true)
			return
		}
		h.answerActionError(ctx, b, query, err)
		return
	}
	h.answer(ctx, b, query.ID, "", false)

	logger.Info("reminder snoozed", "user_id", query.From.ID, "event_id", eventID, "minutes", minutes)

	until := now.Add(time.Duration(minutes) * time.Minute)
	if result.Event.SnoozeUntil != nil {
		until = *result.Event.SnoozeUntil
	}
	h.editMessage(ctx, b, query, reminder.FormatSnoozedText(result.Reminder, until), nil)
}

// handleSnoozeBack re-renders the action keyboard, but only while the event
// is still pending.
func (h *Handlers) handleSnoozeBack(ctx context.Context, b *telegram.Bot, query *models.CallbackQuery, eventID uint) {
	event, err := h.ledger.GetEvent(eventID, query.From.ID)
	if err != nil || event.ActionAt != nil {
		h.answer(ctx, b, query.ID, alreadyHandledText, true)
		return
	}
	h.answer(ctx, b, query.ID, "", false)

	text := "🔔 Reminder"
	category := db.CategoryHabits
	if row, err := h.cat.Get(query.From.ID, event.ReminderID); err == nil {
		text = reminder.FormatReminderText(*row)
		category = row.Category
	}

	var keyboard *models.InlineKeyboardMarkup
	if category == db.CategoryMotivation {
		keyboard, err = ui.MotivationActionKeyboard(eventID)
	} else {
		keyboard, err = ui.HabitActionKeyboard(eventID)
	}
	if err != nil {
		logger.Error("failed to build action keyboard", "event_id", eventID, "error", err)
		return
	}
	h.editMessage(ctx, b, query, text, keyboard)
}

// answerActionError maps engine errors to benign callback alerts; a
// duplicate tap or a vanished event is never an error to the user.
func (h *Handlers) answerActionError(ctx context.Context, b *telegram.Bot, query *models.CallbackQuery, err error) {
	switch {
	case errors.Is(err, reminder.ErrAlreadyActioned), errors.Is(err, reminder.ErrNotFound):
		h.answer(ctx, b, query.ID, alreadyHandledText, true)
	default:
		logger.Error("failed to record reminder action", "user_id", query.From.ID, "error", err)
		h.answer(ctx, b, query.ID, "Something went wrong, try again later", true)
	}
}

func (h *Handlers) answer(ctx context.Context, b *telegram.Bot, queryID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &telegram.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		logger.Error("failed to answer callback query", "error", err)
	}
}

func (h *Handlers) editMessage(ctx context.Context, b *telegram.Bot, query *models.CallbackQuery, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &telegram.EditMessageTextParams{
		ChatID:    query.Message.Message.Chat.ID,
		MessageID: query.Message.Message.ID,
		Text:      text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		logger.Error("failed to edit reminder message", "chat_id", query.Message.Message.Chat.ID, "error", err)
	}
}
