package bot

import (
	"fmt"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/presenter"
	"github.com/valpere/pogoda/pkg/weather"
)

// Messenger sends and edits chat messages.
type Messenger interface {
	Send(chatID int64, text string) (messageID int64, err error)
	Edit(chatID, messageID int64, text string) error
}

// telegramMessenger is the Bot API implementation of Messenger.
type telegramMessenger struct {
	bot *gotgbot.Bot
}

func (m *telegramMessenger) Send(chatID int64, text string) (int64, error) {
	msg, err := m.bot.SendMessage(chatID, text, nil)
	if err != nil {
		return 0, err
	}
	return msg.MessageId, nil
}

func (m *telegramMessenger) Edit(chatID, messageID int64, text string) error {
	_, _, err := m.bot.EditMessageText(text, &gotgbot.EditMessageTextOpts{
		ChatId:    chatID,
		MessageId: messageID,
	})
	return err
}

// ChatSink renders one request cycle into a chat. The loading message is
// edited in place with the result; if that fails a new message is sent.
type ChatSink struct {
	messenger Messenger
	chatID    int64
	labels    presenter.Labels
	logger    *zerolog.Logger

	loadingID int64
	state     presenter.RequestState
	query     string
}

func NewChatSink(messenger Messenger, chatID int64, labels presenter.Labels, logger *zerolog.Logger) *ChatSink {
	return &ChatSink{
		messenger: messenger,
		chatID:    chatID,
		labels:    labels,
		logger:    logger,
		state:     presenter.Idle(),
	}
}

func (s *ChatSink) ShowLoading(message string) {
	s.state = presenter.Loading(message)
	id, err := s.messenger.Send(s.chatID, message)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("chat_id", s.chatID).
			Msg("Failed to send loading message")
		return
	}
	s.loadingID = id
}

func (s *ChatSink) ShowError(message string) {
	s.state = presenter.Failure(message)
	s.deliver(message)
}

func (s *ChatSink) ShowWeather(view *weather.View) {
	text, err := s.format(view)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("chat_id", s.chatID).
			Msg("Failed to format weather view")
		s.ShowError(s.labels.GenericError)
		return
	}
	s.state = presenter.Success(view)
	s.deliver(text)
}

// ResetSubmitControl forgets the loading message so a later cycle starts a
// new one.
func (s *ChatSink) ResetSubmitControl() {
	s.loadingID = 0
}

func (s *ChatSink) SetQuery(city string) {
	s.query = city
}

// State returns the current request state.
func (s *ChatSink) State() presenter.RequestState {
	return s.state
}

func (s *ChatSink) deliver(text string) {
	if s.loadingID != 0 {
		err := s.messenger.Edit(s.chatID, s.loadingID, text)
		if err == nil {
			return
		}
		s.logger.Debug().
			Err(err).
			Int64("chat_id", s.chatID).
			Int64("message_id", s.loadingID).
			Msg("Edit failed, sending a new message")
	}

	if _, err := s.messenger.Send(s.chatID, text); err != nil {
		s.logger.Warn().
			Err(err).
			Int64("chat_id", s.chatID).
			Msg("Failed to send message")
	}
}

func (s *ChatSink) format(view *weather.View) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("format: panic: %v", r)
		}
	}()
	if view == nil {
		return "", fmt.Errorf("format: nil view")
	}
	return presenter.FormatText(view, s.labels), nil
}
