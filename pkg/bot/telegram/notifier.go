package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/reminders"
	"github.com/smith3v/tg-reminder-bot/pkg/ui"
)

// Notifier delivers reminder batches to the recipient's private chat,
// whose id equals their user id.
type Notifier struct {
	sender    Sender
	linkEmoji string
}

func NewNotifier(sender Sender, linkEmoji string) *Notifier {
	return &Notifier{sender: sender, linkEmoji: linkEmoji}
}

// Notify sends the batch as one or more messages, stopping at the first
// failed send.
func (n *Notifier) Notify(ctx context.Context, notification reminders.Notification) error {
	for i, message := range ui.RenderNotification(notification, n.linkEmoji) {
		params := &bot.SendMessageParams{
			ChatID: notification.RecipientID,
			Text:   message.Text,
		}
		if message.Keyboard != nil {
			params.ReplyMarkup = message.Keyboard
		}

		if _, err := n.sender.SendMessage(ctx, params); err != nil {
			if isUnreachable(err) {
				return fmt.Errorf("%w: %v", reminders.ErrRecipientUnreachable, err)
			}
			return fmt.Errorf("send part %d: %w", i+1, err)
		}
	}
	return nil
}
