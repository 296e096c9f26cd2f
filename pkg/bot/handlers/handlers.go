package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/config"
	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
	"github.com/smith3v/tg-reminder-bot/pkg/ui"
)

type Store interface {
	Insert(ctx context.Context, reminder *db.Reminder) error
	Update(ctx context.Context, reminder *db.Reminder) error
	FindOne(ctx context.Context, filter db.ReminderFilter) (*db.Reminder, error)
	FindMany(ctx context.Context, filter db.ReminderFilter) ([]db.Reminder, error)
	DeleteOne(ctx context.Context, filter db.ReminderFilter) (bool, error)
	DeleteMany(ctx context.Context, filter db.ReminderFilter) (int64, error)
}

// Deps is everything the command handlers share.
type Deps struct {
	Store       Store
	Registry    *paginate.Registry
	Config      config.RemindersConfig
	BotUsername string
	Now         func() time.Time
	// Spawn runs long-lived pager sessions. Defaults to a new goroutine.
	Spawn func(func())
}

type Handlers struct {
	deps Deps
}

func New(deps Deps) *Handlers {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Spawn == nil {
		deps.Spawn = func(f func()) { go f() }
	}
	if deps.Registry == nil {
		deps.Registry = paginate.NewRegistry()
	}
	if deps.Config.ListTimeout <= 0 {
		deps.Config.ListTimeout = 30 * time.Second
	}
	return &Handlers{deps: deps}
}

// Register wires every command and callback into b.
func (h *Handlers) Register(b *bot.Bot) {
	b.RegisterHandlerMatchFunc(matchCommand("remind"), h.HandleRemind)
	b.RegisterHandlerMatchFunc(matchCommand("reminders"), h.HandleList)
	b.RegisterHandlerMatchFunc(matchCommand("delete"), h.HandleDelete)
	b.RegisterHandlerMatchFunc(matchCommand("clear"), h.HandleClear)
	b.RegisterHandlerMatchFunc(matchCommand("ping"), h.HandlePing)
	b.RegisterHandlerMatchFunc(matchCommand("about"), h.HandleAbout)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.PagerCallbackPrefix, bot.MatchTypePrefix, h.HandlePagerCallback)
}

func matchCommand(name string) func(*models.Update) bool {
	return func(update *models.Update) bool {
		if update == nil || update.Message == nil {
			return false
		}
		command, _ := splitCommand(update.Message.Text)
		return command == name
	}
}

// splitCommand turns "/remind@SomeBot 1h tea" into ("remind", "1h tea").
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	head, rest, _ := strings.Cut(text, " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		rest = head[i:] + " " + rest
		head = head[:i]
	}
	head, _, _ = strings.Cut(strings.TrimPrefix(head, "/"), "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}

func validMessage(update *models.Update, name string) bool {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in " + name)
		return false
	}
	return true
}

func sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
