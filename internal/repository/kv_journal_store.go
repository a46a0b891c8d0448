package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"PerpScout/internal/domain/models"
	domrepo "PerpScout/internal/domain/repository"
	"PerpScout/pkg/cache"
)

const (
	tradeIndexKey   = "journal:trades"
	messagesKey     = "journal:messages"
	settingsKey     = "settings:telegram"
	maxMessageCount = 500
)

// KVJournalStore keeps the journal in a key-value cache (Redis in production).
// Trades live under one key each plus an id index; messages are a capped list.
type KVJournalStore struct {
	kv cache.Service
	mu sync.Mutex
}

func NewKVJournalStore(kv cache.Service) *KVJournalStore {
	return &KVJournalStore{kv: kv}
}

func tradeKey(id string) string { return cache.GenerateKey("journal", "trade", id) }

func (s *KVJournalStore) SaveTrade(ctx context.Context, t *models.LoggedTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.tradeIDs(ctx)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, tradeKey(t.ID), t, 0); err != nil {
		return fmt.Errorf("save trade %s: %w", t.ID, err)
	}
	for _, id := range ids {
		if id == t.ID {
			return nil
		}
	}
	if err := s.kv.Set(ctx, tradeIndexKey, append(ids, t.ID), 0); err != nil {
		return fmt.Errorf("save trade index: %w", err)
	}
	return nil
}

func (s *KVJournalStore) GetTrade(ctx context.Context, id string) (*models.LoggedTrade, error) {
	var t models.LoggedTrade
	if err := s.kv.Get(ctx, tradeKey(id), &t); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, models.ErrTradeNotFound
		}
		return nil, fmt.Errorf("get trade %s: %w", id, err)
	}
	return &t, nil
}

func (s *KVJournalStore) ListTrades(ctx context.Context) ([]models.LoggedTrade, error) {
	ids, err := s.tradeIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.LoggedTrade, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTrade(ctx, id)
		if errors.Is(err, models.ErrTradeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *KVJournalStore) AppendMessage(ctx context.Context, m *models.SentMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.ListMessages(ctx)
	if err != nil {
		return err
	}
	msgs = append(msgs, *m)
	if len(msgs) > maxMessageCount {
		msgs = msgs[len(msgs)-maxMessageCount:]
	}
	if err := s.kv.Set(ctx, messagesKey, msgs, 0); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *KVJournalStore) ListMessages(ctx context.Context) ([]models.SentMessage, error) {
	var msgs []models.SentMessage
	if err := s.kv.Get(ctx, messagesKey, &msgs); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return []models.SentMessage{}, nil
		}
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (s *KVJournalStore) SaveSettings(ctx context.Context, st *models.NotifierSettings) error {
	if err := s.kv.Set(ctx, settingsKey, st, 0); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadSettings returns nil settings when none were saved.
func (s *KVJournalStore) LoadSettings(ctx context.Context) (*models.NotifierSettings, error) {
	var st models.NotifierSettings
	if err := s.kv.Get(ctx, settingsKey, &st); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &st, nil
}

func (s *KVJournalStore) tradeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.kv.Get(ctx, tradeIndexKey, &ids); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load trade index: %w", err)
	}
	return ids, nil
}

var _ domrepo.JournalStore = (*KVJournalStore)(nil)
