package testutil

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const okResponse = `{"ok":true,"result":{"message_id":1}}`

type RecordedRequest struct {
	Path        string
	Method      string
	ContentType string
	Body        []byte
}

// MockClient records Bot API calls. Queued responses are returned in
// order, then Response for every later call.
type MockClient struct {
	mu       sync.Mutex
	requests []RecordedRequest
	queued   []string
	Response string
}

func NewMockClient() *MockClient {
	return &MockClient{Response: okResponse}
}

func (m *MockClient) Queue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, responses...)
}

func (m *MockClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := req.Body.Close(); err != nil {
		return nil, fmt.Errorf("failed to close request body: %w", err)
	}

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Path:        req.URL.Path,
		Method:      req.Method,
		ContentType: req.Header.Get("Content-Type"),
		Body:        body,
	})
	response := m.Response
	if len(m.queued) > 0 {
		response = m.queued[0]
		m.queued = m.queued[1:]
	}
	m.mu.Unlock()

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(response)),
		Header:     make(http.Header),
	}, nil
}

func (m *MockClient) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// Methods lists the Bot API method of each recorded call, e.g. "sendMessage".
func (m *MockClient) Methods() []string {
	requests := m.Requests()
	out := make([]string, len(requests))
	for i, req := range requests {
		out[i] = req.Path[strings.LastIndex(req.Path, "/")+1:]
	}
	return out
}

func (m *MockClient) LastMessageText(t *testing.T) string {
	t.Helper()
	value, ok := m.LastField(t, "text")
	if !ok {
		t.Fatalf("text field not found in request")
	}
	return value
}

// LastField returns a multipart field of the most recent request.
func (m *MockClient) LastField(t *testing.T, fieldName string) (string, bool) {
	t.Helper()
	requests := m.Requests()
	if len(requests) == 0 {
		t.Fatalf("expected at least one recorded request")
	}
	return Field(t, requests[len(requests)-1], fieldName)
}

func Field(t *testing.T, req RecordedRequest, fieldName string) (string, bool) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(req.ContentType)
	if err != nil {
		t.Fatalf("failed to parse media type: %v", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("unexpected media type: %s", mediaType)
	}

	reader := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read multipart part: %v", err)
		}
		if part.FormName() == fieldName {
			data, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("failed to read multipart field: %v", err)
			}
			return string(data), true
		}
	}
	return "", false
}

func NewTestBot(t *testing.T, client *MockClient) *telegram.Bot {
	t.Helper()
	b, err := telegram.New("test-token",
		telegram.WithSkipGetMe(),
		telegram.WithHTTPClient(time.Second, client),
	)
	if err != nil {
		t.Fatalf("failed to create test bot: %v", err)
	}
	return b
}

func NewMessageUpdate(text string, userID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID: 10,
			From: &models.User{
				ID: userID,
			},
			Chat: models.Chat{
				ID:   userID,
				Type: models.ChatTypePrivate,
			},
			Text: text,
		},
	}
}

func NewCallbackUpdate(data string, userID, chatID int64, messageID int) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "callback-1",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Type: models.MaybeInaccessibleMessageTypeMessage,
				Message: &models.Message{
					ID: messageID,
					Chat: models.Chat{
						ID:   chatID,
						Type: models.ChatTypePrivate,
					},
				},
			},
		},
	}
}
