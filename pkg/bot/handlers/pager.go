package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
	"github.com/smith3v/tg-reminder-bot/pkg/ui"
)

// HandlePagerCallback routes pager buttons to their session. The
// callback query is always answered.
func (h *Handlers) HandlePagerCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandlePagerCallback")
		return
	}
	query := update.CallbackQuery
	answer := &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID}
	defer func() {
		if _, err := b.AnswerCallbackQuery(ctx, answer); err != nil {
			logger.Error("failed to answer pager callback", "user_id", query.From.ID, "error", err)
		}
	}()

	callback, err := ui.ParsePagerCallback(query.Data)
	if err != nil {
		logger.Error("failed to parse pager callback", "data", query.Data, "error", err)
		return
	}

	accepted, err := h.deps.Registry.Dispatch(ctx, callback.Token, query.From.ID, callback.Action)
	switch {
	case errors.Is(err, paginate.ErrUnknownSession):
		answer.Text = "This list has expired."
	case err != nil:
		logger.Error("failed to update pager", "user_id", query.From.ID, "action", callback.Action.Kind.String(), "error", err)
	case !accepted:
		logger.Debug("pager action refused", "user_id", query.From.ID, "token", callback.Token)
	}
}
