package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
)

func (h *Handlers) HandleDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update, "HandleDelete") {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	_, args := splitCommand(update.Message.Text)
	fields := strings.Fields(args)
	if len(fields) != 1 {
		sendText(ctx, b, chatID, "Usage: /delete <reminder id>")
		return
	}
	filter := db.ReminderFilter{ID: strings.ToUpper(fields[0]), RecipientID: userID}

	reminder, err := h.deps.Store.FindOne(ctx, filter)
	if err != nil {
		logger.Error("failed to find reminder", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to delete the reminder. Please try again later.")
		return
	}
	if reminder == nil {
		sendText(ctx, b, chatID, "Reminder not found")
		return
	}

	// The scheduler may have fired it in the meantime; either way it is gone.
	if _, err := h.deps.Store.DeleteOne(ctx, filter); err != nil {
		logger.Error("failed to delete reminder", "user_id", userID, "reminder_id", reminder.ID, "error", err)
		sendText(ctx, b, chatID, "Failed to delete the reminder. Please try again later.")
		return
	}
	sendText(ctx, b, chatID, "Reminder has been deleted")
}

func (h *Handlers) HandleClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update, "HandleClear") {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	deleted, err := h.deps.Store.DeleteMany(ctx, db.ReminderFilter{RecipientID: userID})
	if err != nil {
		logger.Error("failed to clear reminders", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to delete your reminders. Please try again later.")
		return
	}
	if deleted == 0 {
		sendText(ctx, b, chatID, "You have no reminders set")
		return
	}
	logger.Info("reminders cleared", "user_id", userID, "count", deleted)
	sendText(ctx, b, chatID, "All reminders have been deleted")
}
