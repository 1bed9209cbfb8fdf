package ui

import (
	"strconv"

	"github.com/go-telegram/bot/models"
)

// SnoozeDurations are the minute choices offered in the snooze menu.
var SnoozeDurations = []int{15, 30, 60, 120}

// HabitActionKeyboard renders Done / Skip / Snooze under a habit-style
// reminder (habits, food, wishlist).
func HabitActionKeyboard(eventID uint) (*models.InlineKeyboardMarkup, error) {
	doneData, err := BuildDoneCallback(eventID)
	if err != nil {
		return nil, err
	}
	skipData, err := BuildSkipCallback(eventID)
	if err != nil {
		return nil, err
	}
	snoozeData, err := BuildSnoozeMenuCallback(eventID)
	if err != nil {
		return nil, err
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Done", CallbackData: doneData},
				{Text: "❌ Skip", CallbackData: skipData},
			},
			{
				{Text: "⏰ Snooze", CallbackData: snoozeData},
			},
		},
	}, nil
}

// MotivationActionKeyboard renders Seen / Snooze under motivation content.
func MotivationActionKeyboard(eventID uint) (*models.InlineKeyboardMarkup, error) {
	seenData, err := BuildSeenCallback(eventID)
	if err != nil {
		return nil, err
	}
	snoozeData, err := BuildSnoozeMenuCallback(eventID)
	if err != nil {
		return nil, err
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "👀 Seen", CallbackData: seenData},
				{Text: "⏰ Snooze", CallbackData: snoozeData},
			},
		},
	}, nil
}

// SnoozeDurationKeyboard renders the duration choices plus a back button.
func SnoozeDurationKeyboard(eventID uint) (*models.InlineKeyboardMarkup, error) {
	var row []models.InlineKeyboardButton
	for _, minutes := range SnoozeDurations {
		data, err := BuildSnoozeCallback(minutes, eventID)
		if err != nil {
			return nil, err
		}
		label := strconv.Itoa(minutes) + "m"
		if minutes >= 60 {
			label = strconv.Itoa(minutes/60) + "h"
		}
		row = append(row, models.InlineKeyboardButton{Text: label, CallbackData: data})
	}

	backData, err := BuildSnoozeBackCallback(eventID)
	if err != nil {
		return nil, err
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			row,
			{
				{Text: "← Back", CallbackData: backData},
			},
		},
	}, nil
}
