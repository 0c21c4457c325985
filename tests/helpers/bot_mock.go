package helpers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

// MockRequest is one Bot API call seen by MockBotClient.
type MockRequest struct {
	Method string
	Params map[string]string
}

// MockBotClient is a mock BotClient for testing bot operations. It answers
// every call with a message and records what was sent.
type MockBotClient struct {
	mu       sync.Mutex
	requests []MockRequest
	// Err, when set, is returned for every call.
	Err error
}

func (m *MockBotClient) RequestWithContext(ctx context.Context, token string, method string, params map[string]string, data map[string]gotgbot.FileReader, opts *gotgbot.RequestOpts) (json.RawMessage, error) {
	m.mu.Lock()
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	m.requests = append(m.requests, MockRequest{Method: method, Params: copied})
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	// Return a mock successful response for all requests
	mockResponse := `{"message_id":1,"date":1234567890,"chat":{"id":12345,"type":"private"},"text":"test"}`
	return json.RawMessage(mockResponse), nil
}

// Requests returns the calls recorded so far.
func (m *MockBotClient) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockRequest(nil), m.requests...)
}

// Texts returns the text parameter of every recorded call, in order.
func (m *MockBotClient) Texts() []string {
	var texts []string
	for _, req := range m.Requests() {
		if text, ok := req.Params["text"]; ok {
			texts = append(texts, text)
		}
	}
	return texts
}

func (m *MockBotClient) TimeoutContext(opts *gotgbot.RequestOpts) (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func (m *MockBotClient) GetAPIURL(opts *gotgbot.RequestOpts) string {
	return "https://api.telegram.org"
}

func (m *MockBotClient) FileURL(token string, tgFilePath string, opts *gotgbot.RequestOpts) string {
	return "https://api.telegram.org/file/bot" + token + "/" + tgFilePath
}

// MockBot creates a minimal gotgbot.Bot instance for testing
type MockBot struct {
	Bot    *gotgbot.Bot
	Client *MockBotClient
}

// NewMockBot creates a new mock bot instance with a mock BotClient
func NewMockBot() *MockBot {
	bot := &gotgbot.Bot{
		User: gotgbot.User{
			Id:        12345,
			IsBot:     true,
			FirstName: "TestBot",
			Username:  "test_bot",
		},
		Token: "test_token",
	}

	// Set the mock BotClient
	client := &MockBotClient{}
	bot.BotClient = client

	return &MockBot{
		Bot:    bot,
		Client: client,
	}
}

// MockContext wraps an ext.Context for a private-chat text update.
type MockContext struct {
	Context *ext.Context
}

// MockContextOptions provides options for creating a mock context
type MockContextOptions struct {
	UpdateID     int64
	UserID       int64
	Username     string
	FirstName    string
	LanguageCode string
	ChatID       int64
	MessageID    int64
	MessageText  string
}

// NewMockContext creates a new mock context with the given options
func NewMockContext(opts MockContextOptions) *MockContext {
	// Set defaults
	if opts.UserID == 0 {
		opts.UserID = 12345
	}
	if opts.Username == "" {
		opts.Username = "testuser"
	}
	if opts.FirstName == "" {
		opts.FirstName = "Test"
	}
	if opts.ChatID == 0 {
		opts.ChatID = opts.UserID
	}
	if opts.MessageID == 0 {
		opts.MessageID = 1
	}

	user := &gotgbot.User{
		Id:           opts.UserID,
		FirstName:    opts.FirstName,
		Username:     opts.Username,
		LanguageCode: opts.LanguageCode,
	}
	chat := gotgbot.Chat{Id: opts.ChatID, Type: "private"}
	message := &gotgbot.Message{
		MessageId: opts.MessageID,
		From:      user,
		Chat:      chat,
		Text:      opts.MessageText,
	}

	return &MockContext{Context: &ext.Context{
		Update: &gotgbot.Update{
			UpdateId: opts.UpdateID,
			Message:  message,
		},
		EffectiveUser:    user,
		EffectiveChat:    &chat,
		EffectiveMessage: message,
		Data:             make(map[string]interface{}),
	}}
}

// NewSimpleMockContext creates a text message from userID in their private chat.
func NewSimpleMockContext(userID int64, messageText string) *MockContext {
	return NewMockContext(MockContextOptions{
		UserID:      userID,
		MessageText: messageText,
	})
}
