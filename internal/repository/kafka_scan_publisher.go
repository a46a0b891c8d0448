package repository

import (
	"context"
	"fmt"

	"PerpScout/internal/domain/models"
	domrepo "PerpScout/internal/domain/repository"
)

// EventProducer is the part of *kafka.Producer the publisher uses.
type EventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaScanPublisher emits one scan.completed event per cycle, keyed by run id.
type KafkaScanPublisher struct {
	producer EventProducer
	topic    string
}

func NewKafkaScanPublisher(producer EventProducer, topic string) *KafkaScanPublisher {
	return &KafkaScanPublisher{producer: producer, topic: topic}
}

func (p *KafkaScanPublisher) PublishScan(ctx context.Context, r *models.ScanResult) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(r.RunID), models.NewScanEvent(r)); err != nil {
		return fmt.Errorf("publish scan %s: %w", r.RunID, err)
	}
	return nil
}

func (p *KafkaScanPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.ScanPublisher = (*KafkaScanPublisher)(nil)
