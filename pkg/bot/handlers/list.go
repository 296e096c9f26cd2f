package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/telegram"
	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
	"github.com/smith3v/tg-reminder-bot/pkg/ui"
)

// HandleList shows the caller's reminders in a pager sent to their
// private chat. The pager runs through Deps.Spawn so the update worker
// is not held for the whole session.
func (h *Handlers) HandleList(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update, "HandleList") {
		return
	}
	chat := update.Message.Chat
	userID := update.Message.From.ID

	list, err := h.deps.Store.FindMany(ctx, db.ReminderFilter{RecipientID: userID})
	if err != nil {
		logger.Error("failed to load reminders", "user_id", userID, "error", err)
		sendText(ctx, b, chat.ID, "Failed to load your reminders. Please try again later.")
		return
	}
	if len(list) == 0 {
		sendText(ctx, b, chat.ID, "You have no reminders set")
		return
	}

	pager, err := paginate.New(ui.RenderReminderPages(list, h.deps.Now()), paginate.Options{
		OwnerID:         userID,
		Timeout:         h.deps.Config.ListTimeout,
		Embedded:        true,
		QuickNavigation: false,
		Hidden:          true,
	})
	if err != nil {
		logger.Error("failed to build reminder pager", "user_id", userID, "error", err)
		return
	}

	renderer := telegram.NewPagerRenderer(b, chat.ID)
	h.deps.Spawn(func() {
		err := pager.Run(ctx, renderer, h.deps.Registry)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("reminder pager failed", "user_id", userID, "error", err)
		if errors.Is(err, bot.ErrorForbidden) && chat.Type != models.ChatTypePrivate {
			sendText(ctx, b, chat.ID, "I could not message you privately. Please start a chat with me first.")
		}
	})
}
