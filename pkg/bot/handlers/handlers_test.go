package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/config"
	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/internal/testutil"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestHandlers(t *testing.T, timeout time.Duration, sync bool) (*Handlers, *db.ReminderStore) {
	t.Helper()
	logger.SetLogLevel(logger.ERROR)
	store := testutil.SetupReminderStore(t)
	deps := Deps{
		Store:    store,
		Registry: paginate.NewRegistry(),
		Config:   config.RemindersConfig{ListTimeout: timeout},
		Now:      func() time.Time { return testNow },
	}
	if sync {
		deps.Spawn = func(f func()) { f() }
	}
	return New(deps), store
}

func seed(t *testing.T, store *db.ReminderStore, reminders ...db.Reminder) {
	t.Helper()
	for i := range reminders {
		if err := store.Insert(context.Background(), &reminders[i]); err != nil {
			t.Fatalf("failed to seed reminder: %v", err)
		}
	}
}

func groupUpdate(text string, userID, chatID int64) *models.Update {
	update := testutil.NewMessageUpdate(text, userID)
	update.Message.Chat = models.Chat{ID: chatID, Type: models.ChatTypeSupergroup}
	return update
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		input, command, args string
	}{
		{"/remind 1h tea", "remind", "1h tea"},
		{"/Remind@ReminderBot 1h  tea time ", "remind", "1h  tea time"},
		{"/reminders", "reminders", ""},
		{"/remind\n1h tea", "remind", "1h tea"},
		{"hello", "", ""},
	}
	for _, tt := range tests {
		command, args := splitCommand(tt.input)
		if command != tt.command || args != tt.args {
			t.Fatalf("splitCommand(%q) = (%q, %q), want (%q, %q)", tt.input, command, args, tt.command, tt.args)
		}
	}
}

func TestHandleRemindCreatesReminder(t *testing.T) {
	h, store := newTestHandlers(t, time.Second, true)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandleRemind(context.Background(), b, testutil.NewMessageUpdate("/remind 1h30m drink water", 42))

	text := client.LastMessageText(t)
	if !strings.Contains(text, "Okay I have added a reminder with ID `") || !strings.HasSuffix(text, "which will trigger in 1 hour and 30 minutes") {
		t.Fatalf("unexpected confirmation: %q", text)
	}
	if mode, _ := client.LastField(t, "parse_mode"); mode != "MarkdownV2" {
		t.Fatalf("expected MarkdownV2 confirmation, got parse_mode %q", mode)
	}

	list, err := store.FindMany(context.Background(), db.ReminderFilter{RecipientID: 42})
	if err != nil {
		t.Fatalf("FindMany returned error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one reminder, got %d", len(list))
	}
	if list[0].Message != "drink water" {
		t.Fatalf("unexpected message %q", list[0].Message)
	}
	if !list[0].DueAt.Equal(testNow.Add(90 * time.Minute)) {
		t.Fatalf("unexpected due time %s", list[0].DueAt)
	}
	if list[0].OriginURL != nil {
		t.Fatalf("private chats have no message link, got %q", *list[0].OriginURL)
	}
	if !strings.Contains(text, list[0].ID) {
		t.Fatalf("confirmation %q does not mention id %s", text, list[0].ID)
	}
}

func TestHandleRemindStoresGroupLink(t *testing.T) {
	h, store := newTestHandlers(t, time.Second, true)
	client := testutil.NewMockClient()
	client.Response = `{"ok":true,"result":{"message_id":55,"chat":{"id":-1001234,"type":"supergroup"}}}`
	b := testutil.NewTestBot(t, client)

	h.HandleRemind(context.Background(), b, groupUpdate("/remind 10m standup", 42, -1001234))

	list, err := store.FindMany(context.Background(), db.ReminderFilter{RecipientID: 42})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one reminder, got %d (err %v)", len(list), err)
	}
	if list[0].OriginURL == nil || *list[0].OriginURL != "https://t.me/c/1234/55" {
		t.Fatalf("expected origin link to be stored, got %v", list[0].OriginURL)
	}
}

func TestHandleRemindRejectsBadInput(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/remind", "Usage: /remind"},
		{"/remind 1h", "Usage: /remind"},
		{"/remind soon tea", "could not understand the duration"},
		{"/remind 0 tea", "greater than zero"},
		{"/remind 99999d99999d tea", "too far in the future"},
	}
	for _, tt := range tests {
		h, store := newTestHandlers(t, time.Second, true)
		client := testutil.NewMockClient()
		b := testutil.NewTestBot(t, client)

		h.HandleRemind(context.Background(), b, testutil.NewMessageUpdate(tt.text, 7))

		if got := client.LastMessageText(t); !strings.Contains(got, tt.want) {
			t.Fatalf("%q: expected %q in reply, got %q", tt.text, tt.want, got)
		}
		all, _ := store.All(context.Background())
		if len(all) != 0 {
			t.Fatalf("%q: expected no reminders stored, got %d", tt.text, len(all))
		}
	}
}

func TestHandleListEmpty(t *testing.T) {
	h, _ := newTestHandlers(t, time.Second, true)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandleList(context.Background(), b, testutil.NewMessageUpdate("/reminders", 1))

	if got := client.LastMessageText(t); got != "You have no reminders set" {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestHandleListRunsPagerUntilTimeout(t *testing.T) {
	h, store := newTestHandlers(t, 20*time.Millisecond, true)
	seed(t, store,
		db.Reminder{ID: "B", DueAt: testNow.Add(2 * time.Hour), Message: "second", RecipientID: 1},
		db.Reminder{ID: "A", DueAt: testNow.Add(time.Hour), Message: "first", RecipientID: 1},
		db.Reminder{ID: "Z", DueAt: testNow.Add(time.Hour), Message: "not mine", RecipientID: 2},
	)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandleList(context.Background(), b, testutil.NewMessageUpdate("/reminders", 1))

	methods := client.Methods()
	if len(methods) != 2 || methods[0] != "sendMessage" || methods[1] != "editMessageText" {
		t.Fatalf("expected send then disabling edit, got %v", methods)
	}
	first, _ := testutil.Field(t, client.Requests()[0], "text")
	if !strings.Contains(first, "1: first") || !strings.Contains(first, "2: second") || strings.Contains(first, "not mine") {
		t.Fatalf("unexpected page text %q", first)
	}
	if strings.Index(first, "first") > strings.Index(first, "second") {
		t.Fatalf("reminders are not sorted by due time: %q", first)
	}
}

func TestPagerCallbackNavigatesLiveSession(t *testing.T) {
	h, store := newTestHandlers(t, time.Minute, false)
	for i := 0; i < 7; i++ {
		seed(t, store, db.Reminder{
			ID:          string(rune('A' + i)),
			DueAt:       testNow.Add(time.Duration(i+1) * time.Hour),
			Message:     "task " + string(rune('a'+i)),
			RecipientID: 1,
		})
	}
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandleList(context.Background(), b, testutil.NewMessageUpdate("/reminders", 1))

	deadline := time.Now().Add(2 * time.Second)
	for h.deps.Registry.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("pager session was not registered")
		}
		time.Sleep(time.Millisecond)
	}

	markup, ok := testutil.Field(t, client.Requests()[0], "reply_markup")
	if !ok {
		t.Fatal("expected pager keyboard on first message")
	}
	var keyboard models.InlineKeyboardMarkup
	if err := json.Unmarshal([]byte(markup), &keyboard); err != nil {
		t.Fatalf("failed to decode keyboard: %v", err)
	}
	var nextData, stopData string
	for _, button := range keyboard.InlineKeyboard[len(keyboard.InlineKeyboard)-1] {
		switch {
		case strings.HasSuffix(button.CallbackData, ":n"):
			nextData = button.CallbackData
		case strings.HasSuffix(button.CallbackData, ":s"):
			stopData = button.CallbackData
		}
	}
	if nextData == "" || stopData == "" {
		t.Fatalf("missing next or stop button in %+v", keyboard)
	}

	h.HandlePagerCallback(context.Background(), b, testutil.NewCallbackUpdate(nextData, 2, 1, 1))
	h.HandlePagerCallback(context.Background(), b, testutil.NewCallbackUpdate(nextData, 1, 1, 1))
	h.HandlePagerCallback(context.Background(), b, testutil.NewCallbackUpdate(stopData, 1, 1, 1))

	deadline = time.Now().Add(2 * time.Second)
	for h.deps.Registry.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("pager session was not released after stop")
		}
		time.Sleep(time.Millisecond)
	}

	want := []string{
		"sendMessage",
		"answerCallbackQuery",
		"editMessageText", "answerCallbackQuery",
		"editMessageText", "answerCallbackQuery",
	}
	got := client.Methods()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("api calls = %v, want %v", got, want)
	}
	page2, _ := testutil.Field(t, client.Requests()[2], "text")
	if !strings.Contains(page2, "6: task f") {
		t.Fatalf("expected second page after next, got %q", page2)
	}
}

func TestPagerCallbackExpiredSession(t *testing.T) {
	h, _ := newTestHandlers(t, time.Second, true)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandlePagerCallback(context.Background(), b, testutil.NewCallbackUpdate("pg:0123456789abcdef0123456789abcdef:n", 1, 1, 1))

	methods := client.Methods()
	if len(methods) != 1 || methods[0] != "answerCallbackQuery" {
		t.Fatalf("expected only the callback answer, got %v", methods)
	}
	if text, _ := client.LastField(t, "text"); text != "This list has expired." {
		t.Fatalf("unexpected answer text %q", text)
	}
}

func TestHandleDelete(t *testing.T) {
	h, store := newTestHandlers(t, time.Second, true)
	seed(t, store,
		db.Reminder{ID: "01HX", DueAt: testNow.Add(time.Hour), Message: "mine", RecipientID: 1},
		db.Reminder{ID: "01HY", DueAt: testNow.Add(time.Hour), Message: "theirs", RecipientID: 2},
	)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandleDelete(context.Background(), b, testutil.NewMessageUpdate("/delete 01HY", 1))
	if got := client.LastMessageText(t); got != "Reminder not found" {
		t.Fatalf("deleting another user's reminder: got %q", got)
	}

	h.HandleDelete(context.Background(), b, testutil.NewMessageUpdate("/delete 01hx", 1))
	if got := client.LastMessageText(t); got != "Reminder has been deleted" {
		t.Fatalf("unexpected reply %q", got)
	}

	h.HandleDelete(context.Background(), b, testutil.NewMessageUpdate("/delete 01HX", 1))
	if got := client.LastMessageText(t); got != "Reminder not found" {
		t.Fatalf("second delete: got %q", got)
	}

	h.HandleDelete(context.Background(), b, testutil.NewMessageUpdate("/delete", 1))
	if got := client.LastMessageText(t); !strings.HasPrefix(got, "Usage: /delete") {
		t.Fatalf("missing id: got %q", got)
	}

	other, _ := store.FindOne(context.Background(), db.ReminderFilter{ID: "01HY"})
	if other == nil {
		t.Fatal("another user's reminder should survive")
	}
}

func TestHandleClear(t *testing.T) {
	h, store := newTestHandlers(t, time.Second, true)
	seed(t, store,
		db.Reminder{ID: "A", DueAt: testNow, Message: "x", RecipientID: 1},
		db.Reminder{ID: "B", DueAt: testNow, Message: "y", RecipientID: 1},
		db.Reminder{ID: "C", DueAt: testNow, Message: "z", RecipientID: 2},
	)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandleClear(context.Background(), b, testutil.NewMessageUpdate("/clear", 1))
	if got := client.LastMessageText(t); got != "All reminders have been deleted" {
		t.Fatalf("unexpected reply %q", got)
	}

	h.HandleClear(context.Background(), b, testutil.NewMessageUpdate("/clear", 1))
	if got := client.LastMessageText(t); got != "You have no reminders set" {
		t.Fatalf("unexpected reply %q", got)
	}

	rest, _ := store.All(context.Background())
	if len(rest) != 1 || rest[0].ID != "C" {
		t.Fatalf("expected only C to remain, got %+v", rest)
	}
}

func TestHandlePingEditsWithLatency(t *testing.T) {
	h, _ := newTestHandlers(t, time.Second, true)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandlePing(context.Background(), b, testutil.NewMessageUpdate("/ping", 1))

	methods := client.Methods()
	if len(methods) != 2 || methods[1] != "editMessageText" {
		t.Fatalf("expected pong then edit, got %v", methods)
	}
	if got := client.LastMessageText(t); !strings.HasPrefix(got, "Ping ") || !strings.HasSuffix(got, "ms") {
		t.Fatalf("unexpected latency text %q", got)
	}
}

func TestHandleAboutAddsInviteButton(t *testing.T) {
	h, _ := newTestHandlers(t, time.Second, true)
	h.deps.BotUsername = "ReminderBot"
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.HandleAbout(context.Background(), b, testutil.NewMessageUpdate("/about", 1))

	markup, ok := client.LastField(t, "reply_markup")
	if !ok || !strings.Contains(markup, "https://t.me/ReminderBot?startgroup=true") {
		t.Fatalf("expected invite button, got %q", markup)
	}
}

func TestDefaultHandlerSendsHelp(t *testing.T) {
	h, _ := newTestHandlers(t, time.Second, true)
	client := testutil.NewMockClient()
	b := testutil.NewTestBot(t, client)

	h.DefaultHandler(context.Background(), b, testutil.NewMessageUpdate("hello", 100))
	if got := client.LastMessageText(t); !strings.Contains(got, "Commands:") {
		t.Fatalf("expected commands message, got %q", got)
	}

	h.DefaultHandler(context.Background(), b, groupUpdate("just chatting", 100, -100200))
	if len(client.Requests()) != 1 {
		t.Fatalf("expected no reply to group chatter, got %d requests", len(client.Requests()))
	}
}
