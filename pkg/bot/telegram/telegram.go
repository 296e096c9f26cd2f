// Package telegram binds the pager and the reminder scheduler to the
// Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender is the part of *bot.Bot used to post and edit messages.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
}

// MessageLink returns a t.me link to a message, or "" when the chat has
// no linkable address (private chats and basic groups).
func MessageLink(chat models.Chat, messageID int) string {
	if messageID == 0 {
		return ""
	}
	id := strconv.Itoa(messageID)
	if chat.Type == models.ChatTypePrivate {
		return ""
	}
	if chat.Username != "" {
		return "https://t.me/" + chat.Username + "/" + id
	}
	if chat.Type != models.ChatTypeSupergroup && chat.Type != models.ChatTypeChannel {
		return ""
	}
	internal, ok := strings.CutPrefix(strconv.FormatInt(chat.ID, 10), "-100")
	if !ok || internal == "" {
		return ""
	}
	return "https://t.me/c/" + internal + "/" + id
}

func isUnreachable(err error) bool {
	if errors.Is(err, bot.ErrorForbidden) {
		return true
	}
	return errors.Is(err, bot.ErrorBadRequest) && strings.Contains(strings.ToLower(err.Error()), "chat not found")
}
