package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/reminders"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/telegram"
	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/duration"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
)

const remindUsage = "Usage: /remind <duration> <message>\nExample: /remind 1h30m stretch your legs"

// HandleRemind stores a reminder, confirms it, then records a link to
// the confirmation so the notification can point back at it.
func (h *Handlers) HandleRemind(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update, "HandleRemind") {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	_, args := splitCommand(update.Message.Text)
	fields := strings.Fields(args)
	if len(fields) < 2 {
		sendText(ctx, b, chatID, remindUsage)
		return
	}
	expr := fields[0]
	message := strings.TrimSpace(strings.TrimPrefix(args, expr))

	seconds, err := duration.Parse(expr)
	if err != nil {
		sendText(ctx, b, chatID, durationFeedback(expr, err))
		return
	}
	if seconds <= 0 {
		sendText(ctx, b, chatID, "The duration must be greater than zero.")
		return
	}

	now := h.deps.Now().UTC()
	reminder := &db.Reminder{
		ID:          reminders.NewID(now),
		DueAt:       now.Add(duration.ToDuration(seconds)),
		Message:     message,
		RecipientID: userID,
	}
	if err := h.deps.Store.Insert(ctx, reminder); err != nil {
		logger.Error("failed to insert reminder", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "An error occurred while saving your reminder. Please try again later.")
		return
	}

	confirmation, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("Okay I have added a reminder with ID `%s` which will trigger in %s",
			reminder.ID, bot.EscapeMarkdown(duration.Format(seconds))),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		logger.Error("failed to send reminder confirmation", "user_id", userID, "reminder_id", reminder.ID, "error", err)
		return
	}
	logger.Info("reminder created", "user_id", userID, "reminder_id", reminder.ID, "due_at", reminder.DueAt)

	if confirmation == nil {
		return
	}
	link := telegram.MessageLink(confirmation.Chat, confirmation.ID)
	if link == "" {
		return
	}
	reminder.OriginURL = &link
	if err := h.deps.Store.Update(ctx, reminder); err != nil {
		logger.Error("failed to store reminder link", "reminder_id", reminder.ID, "error", err)
	}
}

func durationFeedback(expr string, err error) string {
	switch {
	case errors.Is(err, duration.ErrDurationTooLarge):
		return "That is too far in the future. Please pick a shorter duration."
	case errors.Is(err, duration.ErrUnknownUnit):
		return fmt.Sprintf("Unknown time unit in %q. Use d, h, m or s.", expr)
	default:
		return fmt.Sprintf("I could not understand the duration %q. Try something like 90, 45m, 1h30m or 2d.", expr)
	}
}
