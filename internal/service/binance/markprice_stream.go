package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	drepo "PerpScout/internal/domain/repository"
	applogger "PerpScout/pkg/logger"
	"PerpScout/pkg/util"

	"github.com/gorilla/websocket"
)

type markPriceUpdate struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Price  string `json:"p"`
}

// MarkPriceStream keeps the latest mark price of every symbol from the
// all-market mark price websocket stream.
type MarkPriceStream struct {
	url            string
	reconnectDelay time.Duration
	logger         *applogger.Logger

	mu     sync.RWMutex
	conn   *websocket.Conn
	prices map[string]float64

	connected atomic.Bool
}

func NewMarkPriceStream(url string, reconnectDelay time.Duration, l *applogger.Logger) *MarkPriceStream {
	if l == nil {
		l = applogger.Nop()
	}
	return &MarkPriceStream{
		url:            url,
		reconnectDelay: reconnectDelay,
		logger:         l,
		prices:         make(map[string]float64),
	}
}

// Connect dials the stream.
func (s *MarkPriceStream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("markprice connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.connected.Store(true)
	s.logger.Info("markprice stream connected", applogger.String("url", s.url))
	return nil
}

// Run reads frames until ctx is done, reconnecting after read failures.
func (s *MarkPriceStream) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	for {
		if !s.IsConnected() {
			if err := s.Connect(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("markprice reconnect failed", applogger.Error(err))
				if !sleepCtx(ctx, s.reconnectDelay) {
					return ctx.Err()
				}
				continue
			}
		}

		err := s.readLoop()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("markprice stream dropped", applogger.Error(err))
		_ = s.Close()
		if !sleepCtx(ctx, s.reconnectDelay) {
			return ctx.Err()
		}
	}
}

func (s *MarkPriceStream) readLoop() error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return errors.New("markprice conn nil")
	}

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("markprice read: %w", err)
		}
		var updates []markPriceUpdate
		if err := json.Unmarshal(b, &updates); err != nil {
			// single-symbol streams send one object
			var one markPriceUpdate
			if json.Unmarshal(b, &one) != nil {
				continue
			}
			updates = []markPriceUpdate{one}
		}
		s.apply(updates)
	}
}

func (s *MarkPriceStream) apply(updates []markPriceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		if u.Symbol == "" {
			continue
		}
		if p, ok := util.ParseFloat(u.Price); ok && p > 0 {
			s.prices[u.Symbol] = p
		}
	}
}

// MarkPrice returns the latest mark price seen for symbol.
func (s *MarkPriceStream) MarkPrice(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// Close closes the connection; Run reconnects unless its context is done.
func (s *MarkPriceStream) Close() error {
	s.connected.Store(false)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *MarkPriceStream) IsConnected() bool { return s.connected.Load() }

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ drepo.MarkPriceStream = (*MarkPriceStream)(nil)
