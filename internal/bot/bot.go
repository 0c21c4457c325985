// Package bot is the optional Telegram frontend. Every plain text message
// is treated as a city query and answered through the same widget cycle as
// the web page.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/interfaces"
	"github.com/valpere/pogoda/internal/middleware"
	"github.com/valpere/pogoda/internal/widget"
	"github.com/valpere/pogoda/pkg/metrics"
)

// SurfaceBot labels metrics and logs produced by the chat frontend.
const SurfaceBot = "bot"

// ErrNoToken is returned by New when no bot token is configured.
var ErrNoToken = errors.New("bot: no token configured")

type Bot struct {
	bot        *gotgbot.Bot
	updater    *ext.Updater
	dispatcher *ext.Dispatcher
	widget     *widget.Widget
	localizer  interfaces.LocalizationServiceInterface
	limiter    *middleware.ClientRateLimiter
	metrics    *metrics.Metrics
	logger     *zerolog.Logger
	baseCtx    context.Context
}

// New connects to the Bot API and registers the handlers.
func New(
	cfg *config.BotConfig,
	w *widget.Widget,
	localizer interfaces.LocalizationServiceInterface,
	limiter *middleware.ClientRateLimiter,
	metricsCollector *metrics.Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if cfg.Token == "" {
		return nil, ErrNoToken
	}

	botInstance, err := gotgbot.NewBot(cfg.Token, &gotgbot.BotOpts{
		BotClient: &gotgbot.BaseBotClient{
			Client: http.Client{Timeout: 30 * time.Second},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return newBot(botInstance, w, localizer, limiter, metricsCollector, logger), nil
}

func newBot(
	botInstance *gotgbot.Bot,
	w *widget.Widget,
	localizer interfaces.LocalizationServiceInterface,
	limiter *middleware.ClientRateLimiter,
	metricsCollector *metrics.Metrics,
	logger *zerolog.Logger,
) *Bot {
	componentLogger := logger.With().Str("component", "bot").Logger()

	b := &Bot{
		bot:       botInstance,
		widget:    w.ForSurface(SurfaceBot),
		localizer: localizer,
		limiter:   limiter,
		metrics:   metricsCollector,
		logger:    &componentLogger,
		baseCtx:   context.Background(),
	}

	b.dispatcher = ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			b.logger.Error().
				Err(err).
				Int64("update_id", ctx.UpdateId).
				Msg("Failed to handle update")
			return ext.DispatcherActionNoop
		},
	})
	b.updater = ext.NewUpdater(b.dispatcher, &ext.UpdaterOpts{})
	b.setupHandlers()

	return b
}

func (b *Bot) setupHandlers() {
	b.dispatcher.AddHandlerToGroup(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		return true
	}, b.logUpdate), -1)

	b.dispatcher.AddHandler(handlers.NewCommand("start", b.help))
	b.dispatcher.AddHandler(handlers.NewCommand("help", b.help))
	b.dispatcher.AddHandler(handlers.NewCommand("location", b.location))

	b.dispatcher.AddHandler(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		return msg.Text != "" && !strings.HasPrefix(msg.Text, "/")
	}, b.handleText))
}

// Start polls for updates until ctx is canceled.
func (b *Bot) Start(ctx context.Context) error {
	b.baseCtx = ctx
	b.logger.Info().
		Str("username", b.bot.Username).
		Msg("Starting Telegram polling")

	if err := b.updater.StartPolling(b.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: 10,
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: time.Second * 15,
			},
		},
	}); err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	<-ctx.Done()
	return nil
}

func (b *Bot) Stop() error {
	b.logger.Info().Msg("Stopping Telegram polling")
	if err := b.updater.Stop(); err != nil {
		return fmt.Errorf("failed to stop updater: %w", err)
	}
	return nil
}

// logUpdate runs before every other handler.
func (b *Bot) logUpdate(_ *gotgbot.Bot, ctx *ext.Context) error {
	event := b.logger.Debug()
	if user := ctx.EffectiveUser; user != nil {
		event = event.Int64("user_id", user.Id).Str("username", user.Username)
	}
	if chat := ctx.EffectiveChat; chat != nil {
		event = event.Int64("chat_id", chat.Id)
	}
	if msg := ctx.EffectiveMessage; msg != nil {
		event = event.Str("text", msg.Text)
	}
	event.Msg("Update received")
	return nil
}

func (b *Bot) help(bot *gotgbot.Bot, ctx *ext.Context) error {
	return b.reply(bot, ctx, "bot_help")
}

func (b *Bot) location(bot *gotgbot.Bot, ctx *ext.Context) error {
	return b.reply(bot, ctx, "bot_location_disabled")
}

func (b *Bot) handleText(bot *gotgbot.Bot, ctx *ext.Context) error {
	chat := ctx.EffectiveChat
	if chat == nil || ctx.EffectiveMessage == nil {
		return nil
	}

	if user := ctx.EffectiveUser; user != nil && !b.limiter.Allow(strconv.FormatInt(user.Id, 10)) {
		b.metrics.IncrementCounter(metrics.RateLimitedTotal, SurfaceBot)
		return b.reply(bot, ctx, "error_rate_limited")
	}

	lang := b.language(ctx)
	reqCtx := widget.WithRequestID(b.baseCtx, fmt.Sprintf("tg-%d", ctx.UpdateId))
	sink := NewChatSink(&telegramMessenger{bot: bot}, chat.Id, b.widget.Labels(reqCtx, lang), b.logger)

	// The outcome is already delivered to the chat.
	_ = b.widget.Submit(reqCtx, sink, ctx.EffectiveMessage.Text, lang)
	return nil
}

func (b *Bot) reply(bot *gotgbot.Bot, ctx *ext.Context, key string) error {
	if ctx.EffectiveChat == nil {
		return nil
	}
	text := b.localizer.T(b.baseCtx, b.language(ctx), key)
	if _, err := bot.SendMessage(ctx.EffectiveChat.Id, text, nil); err != nil {
		return fmt.Errorf("failed to send %s: %w", key, err)
	}
	return nil
}

func (b *Bot) language(ctx *ext.Context) string {
	if ctx.EffectiveUser == nil || ctx.EffectiveUser.LanguageCode == "" {
		return b.localizer.DefaultLanguage()
	}
	return b.localizer.MatchLanguage(ctx.EffectiveUser.LanguageCode)
}
