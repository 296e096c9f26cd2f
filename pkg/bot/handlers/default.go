package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
	"github.com/smith3v/tg-reminder-bot/pkg/ui"
)

const helpText = "Commands:\n" +
	"* /remind <duration> <message>: set a reminder, e.g. /remind 1h30m stretch\n" +
	"* /reminders: list your reminders\n" +
	"* /delete <id>: delete one reminder\n" +
	"* /clear: delete all your reminders\n" +
	"* /ping: check the bot latency\n" +
	"* /about: about this bot\n\n" +
	"Durations combine d, h, m and s (2d, 45m, 1h30m) or are a plain number of seconds."

func (h *Handlers) DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		logger.Debug("ignoring non-message update in DefaultHandler")
		return
	}
	if update.Message.Chat.ID == 0 {
		logger.Error("chat ID is zero in DefaultHandler")
		return
	}
	// Stay quiet in groups unless addressed with a command.
	if update.Message.Chat.Type != models.ChatTypePrivate {
		if command, _ := splitCommand(update.Message.Text); command == "" {
			return
		}
	}
	sendText(ctx, b, update.Message.Chat.ID, helpText)
}

// HandlePing replies, then edits the reply with the measured round trip.
func (h *Handlers) HandlePing(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update, "HandlePing") {
		return
	}
	chatID := update.Message.Chat.ID

	started := time.Now()
	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Pong!"})
	if err != nil {
		logger.Error("failed to send pong", "chat_id", chatID, "error", err)
		return
	}
	latency := time.Since(started)
	if msg == nil {
		return
	}
	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: msg.ID,
		Text:      fmt.Sprintf("Ping %.2fms", float64(latency.Microseconds())/1000.0),
	}); err != nil {
		logger.Error("failed to edit pong", "chat_id", chatID, "error", err)
	}
}

func (h *Handlers) HandleAbout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update, "HandleAbout") {
		return
	}
	params := &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: "Hey there! I'm a reminder bot, I can help you set reminders and keep track of them.\n\n" +
			"Add me to a group or talk to me directly: reminders are always delivered to you in a private chat.",
	}
	if h.deps.BotUsername != "" {
		emoji := h.deps.Config.LinkEmoji
		if emoji == "" {
			emoji = ui.DefaultLinkEmoji
		}
		params.ReplyMarkup = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: emoji + " Add me", URL: "https://t.me/" + h.deps.BotUsername + "?startgroup=true"},
			}},
		}
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		logger.Error("failed to send about message", "chat_id", update.Message.Chat.ID, "error", err)
	}
}
