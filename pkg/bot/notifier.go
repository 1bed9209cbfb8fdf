package bot

import (
	"context"
	"fmt"

	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vvolodin/tg-care-reminder/pkg/reminder"
	"github.com/vvolodin/tg-care-reminder/pkg/ui"
)

// Media kinds the notifier can deliver.
const (
	MediaPhoto     = "photo"
	MediaVideo     = "video"
	MediaAnimation = "animation"
)

// Notifier sends reminder messages through the Telegram Bot API. It
// implements reminder.Notifier.
type Notifier struct {
	b *telegram.Bot
}

func NewNotifier(b *telegram.Bot) *Notifier {
	return &Notifier{b: b}
}

func (n *Notifier) Send(ctx context.Context, userID int64, text string, kb reminder.Keyboard) (int, error) {
	keyboard, err := actionKeyboard(kb)
	if err != nil {
		return 0, err
	}
	msg, err := n.b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID:      userID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (n *Notifier) SendMedia(ctx context.Context, userID int64, kind, ref, caption string, kb reminder.Keyboard) (int, error) {
	keyboard, err := actionKeyboard(kb)
	if err != nil {
		return 0, err
	}

	var msg *models.Message
	switch kind {
	case MediaPhoto:
		msg, err = n.b.SendPhoto(ctx, &telegram.SendPhotoParams{
			ChatID:      userID,
			Photo:       &models.InputFileString{Data: ref},
			Caption:     caption,
			ReplyMarkup: keyboard,
		})
	case MediaVideo:
		msg, err = n.b.SendVideo(ctx, &telegram.SendVideoParams{
			ChatID:      userID,
			Video:       &models.InputFileString{Data: ref},
			Caption:     caption,
			ReplyMarkup: keyboard,
		})
	case MediaAnimation:
		msg, err = n.b.SendAnimation(ctx, &telegram.SendAnimationParams{
			ChatID:      userID,
			Animation:   &models.InputFileString{Data: ref},
			Caption:     caption,
			ReplyMarkup: keyboard,
		})
	default:
		// Unknown media kinds degrade to a plain text send so a bad
		// content row still reaches the user.
		return n.Send(ctx, userID, caption, kb)
	}
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func actionKeyboard(kb reminder.Keyboard) (*models.InlineKeyboardMarkup, error) {
	switch kb.Kind {
	case reminder.KeyboardMotivationActions:
		return ui.MotivationActionKeyboard(kb.EventID)
	case reminder.KeyboardHabitActions:
		return ui.HabitActionKeyboard(kb.EventID)
	default:
		return nil, fmt.Errorf("unknown keyboard kind %q", kb.Kind)
	}
}
