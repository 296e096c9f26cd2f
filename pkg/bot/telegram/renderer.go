package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
	"github.com/smith3v/tg-reminder-bot/pkg/ui"
)

var ErrNotOpened = errors.New("pager message not opened")

// PagerRenderer draws one pager session as a single Telegram message.
// Hidden sessions go to the owner's private chat instead of chatID.
type PagerRenderer struct {
	sender    Sender
	chatID    int64
	messageID int
}

func NewPagerRenderer(sender Sender, chatID int64) *PagerRenderer {
	return &PagerRenderer{sender: sender, chatID: chatID}
}

func (r *PagerRenderer) Open(ctx context.Context, view paginate.View, delivery paginate.Delivery) error {
	keyboard, err := ui.RenderPager(view)
	if err != nil {
		return err
	}
	text := ui.PagerText(view)

	if delivery.Mode == paginate.ModeEdit {
		r.messageID = delivery.MessageID
		return r.edit(ctx, text, keyboard)
	}

	target := r.chatID
	if delivery.Mode == paginate.ModeSend && delivery.Hidden && delivery.OwnerID != 0 {
		target = delivery.OwnerID
	}
	params := &bot.SendMessageParams{ChatID: target, Text: text}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if delivery.Mode == paginate.ModeFollowup && delivery.MessageID != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: delivery.MessageID, AllowSendingWithoutReply: true}
	}

	msg, err := r.sender.SendMessage(ctx, params)
	if err != nil {
		return fmt.Errorf("send pager message: %w", err)
	}
	r.chatID = target
	if msg != nil {
		r.messageID = msg.ID
	}
	return nil
}

func (r *PagerRenderer) Update(ctx context.Context, view paginate.View) error {
	if r.messageID == 0 {
		return ErrNotOpened
	}
	keyboard, err := ui.RenderPager(view)
	if err != nil {
		return err
	}
	return r.edit(ctx, ui.PagerText(view), keyboard)
}

func (r *PagerRenderer) edit(ctx context.Context, text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:    r.chatID,
		MessageID: r.messageID,
		Text:      text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if _, err := r.sender.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("edit pager message: %w", err)
	}
	return nil
}

func (r *PagerRenderer) ChatID() int64 {
	return r.chatID
}

func (r *PagerRenderer) MessageID() int {
	return r.messageID
}
