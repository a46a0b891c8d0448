package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"PerpScout/internal/domain/models"
	drepo "PerpScout/internal/domain/repository"
	pkgkafka "PerpScout/pkg/kafka"
	applogger "PerpScout/pkg/logger"
)

// KafkaSignalsHandler consumes scan events and forwards their recommendations to chat.
type KafkaSignalsHandler struct {
	topic      string
	dispatcher *SignalDispatcher
	autoNotify bool
	metrics    drepo.Metrics
	logger     *applogger.Logger
}

func NewKafkaSignalsHandler(topic string, dispatcher *SignalDispatcher, autoNotify bool, metrics drepo.Metrics, l *applogger.Logger) *KafkaSignalsHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &KafkaSignalsHandler{topic: topic, dispatcher: dispatcher, autoNotify: autoNotify, metrics: metrics, logger: l}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

// Handle only fails on undecodable payloads; delivery problems are logged.
func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.ScanEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode scan event: %w", err)
	}
	if ev.Type != models.ScanEventCompleted || !h.autoNotify {
		return nil
	}

	for _, rec := range ev.Recommendations {
		_, err := h.dispatcher.Dispatch(ctx, rec)
		switch {
		case err == nil:
		case errors.Is(err, models.ErrNotifierNotConfigured):
			h.logger.Warn("auto-notify skipped, telegram not configured", applogger.String("run_id", ev.RunID))
			return nil
		default:
			h.metrics.RecordError("auto_notify")
			h.logger.Warn("auto-notify failed",
				applogger.String("run_id", ev.RunID),
				applogger.String("recommendation_id", rec.ID),
				applogger.Error(err),
			)
		}
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
