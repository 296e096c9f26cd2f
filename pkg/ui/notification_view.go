package ui

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/reminders"
)

const (
	MaxMessageLen      = 4096
	DefaultLinkEmoji   = "🔗"
	linkButtonsPerRow  = 2
	notificationHeader = "Reminders"
	continuationHeader = "Reminders (continued)"
	entrySeparator     = "\n\n"

	// maxEntryLen leaves room for the longest header in front of an entry.
	maxEntryLen = MaxMessageLen - len(continuationHeader) - len(entrySeparator)
)

// NotificationMessage is one Telegram message of a reminder batch.
type NotificationMessage struct {
	Text     string
	Keyboard *models.InlineKeyboardMarkup
}

// RenderNotification splits the batch into messages under MaxMessageLen.
// Entries are never split or dropped; a message too long to fit on its
// own is shortened instead. Link buttons go on the last message.
func RenderNotification(n reminders.Notification, linkEmoji string) []NotificationMessage {
	if linkEmoji == "" {
		linkEmoji = DefaultLinkEmoji
	}

	var messages []NotificationMessage
	var b strings.Builder
	b.WriteString(notificationHeader)
	size := runeLen(notificationHeader)

	for _, entry := range n.Entries {
		text := renderEntry(entry)
		if size+len(entrySeparator)+runeLen(text) > MaxMessageLen {
			messages = append(messages, NotificationMessage{Text: b.String()})
			b.Reset()
			b.WriteString(continuationHeader)
			size = runeLen(continuationHeader)
		}
		b.WriteString(entrySeparator)
		b.WriteString(text)
		size += len(entrySeparator) + runeLen(text)
	}
	messages = append(messages, NotificationMessage{Text: b.String()})
	messages[len(messages)-1].Keyboard = linkKeyboard(n.Links, linkEmoji)
	return messages
}

func renderEntry(entry reminders.Entry) string {
	prefix := "Reminder ID: " + entry.ReminderID + "\nMessage: "
	room := maxEntryLen - runeLen(prefix)
	return prefix + truncate(entry.Message, max(room, 1))
}

func linkKeyboard(links []reminders.Link, linkEmoji string) *models.InlineKeyboardMarkup {
	if len(links) == 0 {
		return nil
	}
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, link := range links {
		row = append(row, models.InlineKeyboardButton{
			Text: linkEmoji + " Rem. ID: " + link.ReminderID,
			URL:  link.URL,
		})
		if len(row) == linkButtonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func runeLen(text string) int {
	return utf8.RuneCountInString(text)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
