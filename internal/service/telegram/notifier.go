package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"PerpScout/internal/domain/models"
	"PerpScout/internal/domain/service"
	xhttp "PerpScout/pkg/http"
	applogger "PerpScout/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

type Option func(*Notifier)

// WithEndpoint overrides the Bot API URL format ("…/bot%s/%s").
func WithEndpoint(format string) Option {
	return func(n *Notifier) { n.endpoint = format }
}

func WithHTTPClient(c tgbotapi.HTTPClient) Option {
	return func(n *Notifier) { n.http = c }
}

func WithRateLimit(perSecond float64, burst int) Option {
	return func(n *Notifier) { n.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func WithLogger(l *applogger.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// Notifier sends plain-text messages through the Telegram Bot API.
// Settings arrive per call, so one bot client is kept per token.
type Notifier struct {
	endpoint string
	http     tgbotapi.HTTPClient
	limiter  *rate.Limiter
	logger   *applogger.Logger

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func New(opts ...Option) *Notifier {
	n := &Notifier{
		endpoint: tgbotapi.APIEndpoint,
		limiter:  rate.NewLimiter(rate.Limit(20), 30),
		logger:   applogger.Nop(),
		bots:     make(map[string]*tgbotapi.BotAPI),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.http == nil {
		n.http = xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	}
	return n
}

func (n *Notifier) Notify(ctx context.Context, settings models.NotifierSettings, text string) error {
	if !settings.Configured() {
		return models.ErrNotifierNotConfigured
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	bot, err := n.bot(settings.Token)
	if err != nil {
		return err
	}

	if _, err := bot.Send(newMessage(settings.ChatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Debug("telegram message sent", applogger.String("chat_id", settings.ChatID))
	return nil
}

func (n *Notifier) bot(token string) (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if b, ok := n.bots[token]; ok {
		return b, nil
	}
	b, err := tgbotapi.NewBotAPIWithClient(token, n.endpoint, n.http)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	n.bots[token] = b
	n.logger.Info("telegram bot authorized", applogger.String("bot", b.Self.UserName))
	return b, nil
}

// newMessage addresses numeric chat ids directly and anything else as a channel username.
func newMessage(chatID, text string) tgbotapi.MessageConfig {
	chatID = strings.TrimSpace(chatID)
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	if !strings.HasPrefix(chatID, "@") {
		chatID = "@" + chatID
	}
	return tgbotapi.NewMessageToChannel(chatID, text)
}

var _ service.Notifier = (*Notifier)(nil)
