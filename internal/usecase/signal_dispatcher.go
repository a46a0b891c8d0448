package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"PerpScout/internal/domain/models"
	drepo "PerpScout/internal/domain/repository"
	domsvc "PerpScout/internal/domain/service"
	applogger "PerpScout/pkg/logger"
	"PerpScout/pkg/util"

	"github.com/google/uuid"
)

// FormatSignal renders a recommendation as a chat message.
func FormatSignal(rec models.TradeRecommendation) string {
	emoji := "🚀"
	if rec.Recommendation == models.DirectionShort {
		emoji = "📉"
	}
	return fmt.Sprintf("%s NEW SIGNAL: %s %s @ $%s\nTP: $%s\nSL: $%s",
		emoji, rec.Recommendation, rec.Pair,
		util.FormatPlain(rec.EntryPrice),
		util.FormatPlain(rec.TakeProfit),
		util.FormatPlain(rec.StopLoss),
	)
}

// SignalDispatcher forwards recommendations to the configured chat and keeps a history.
type SignalDispatcher struct {
	store    drepo.JournalStore
	notifier domsvc.Notifier
	metrics  drepo.Metrics
	logger   *applogger.Logger
	now      func() time.Time
}

func NewSignalDispatcher(store drepo.JournalStore, notifier domsvc.Notifier, metrics drepo.Metrics, l *applogger.Logger) *SignalDispatcher {
	if l == nil {
		l = applogger.Nop()
	}
	return &SignalDispatcher{store: store, notifier: notifier, metrics: metrics, logger: l, now: time.Now}
}

// Dispatch sends rec and records the attempt whatever its outcome.
func (d *SignalDispatcher) Dispatch(ctx context.Context, rec models.TradeRecommendation) (*models.SentMessage, error) {
	settings, err := d.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.Configured() {
		return nil, models.ErrNotifierNotConfigured
	}

	msg := &models.SentMessage{
		ID:               uuid.NewString(),
		RecommendationID: rec.ID,
		Text:             FormatSignal(rec),
		Timestamp:        d.now(),
	}
	sendErr := d.notifier.Notify(ctx, *settings, msg.Text)
	msg.Delivered = sendErr == nil
	if sendErr != nil {
		msg.Error = sendErr.Error()
		d.metrics.RecordNotification("failed")
	} else {
		d.metrics.RecordNotification("sent")
	}

	if err := d.store.AppendMessage(ctx, msg); err != nil {
		d.logger.Warn("message history not saved", applogger.String("id", msg.ID), applogger.Error(err))
	}
	if sendErr != nil {
		return msg, fmt.Errorf("deliver signal %s: %w", rec.ID, sendErr)
	}
	d.logger.Info("signal sent", applogger.String("recommendation_id", rec.ID), applogger.String("pair", rec.Pair))
	return msg, nil
}

// Settings returns the saved notifier settings, or empty ones.
func (d *SignalDispatcher) Settings(ctx context.Context) (*models.NotifierSettings, error) {
	s, err := d.store.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if s == nil {
		s = &models.NotifierSettings{}
	}
	return s, nil
}

func (d *SignalDispatcher) SaveSettings(ctx context.Context, s models.NotifierSettings) error {
	if err := d.store.SaveSettings(ctx, &s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Messages returns the history, newest first.
func (d *SignalDispatcher) Messages(ctx context.Context) ([]models.SentMessage, error) {
	msgs, err := d.store.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(a, b int) bool {
		return msgs[a].Timestamp.After(msgs[b].Timestamp)
	})
	return msgs, nil
}
