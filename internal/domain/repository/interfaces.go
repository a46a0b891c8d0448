package repository

import (
	"context"
	"time"

	"PerpScout/internal/domain/models"
)

// MarketFeed serves the two exchange feeds the screener consumes.
type MarketFeed interface {
	Tickers(ctx context.Context) ([]models.Ticker, error)
	FundingRates(ctx context.Context) ([]models.FundingRate, error)
}

// PriceSource resolves the current price of one symbol.
type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// MarkPriceStream keeps a live mark price book.
type MarkPriceStream interface {
	Connect(ctx context.Context) error
	Run(ctx context.Context) error
	MarkPrice(symbol string) (float64, bool)
	Close() error
	IsConnected() bool
}

// JournalStore is write-through key-value state for trades, messages and settings.
type JournalStore interface {
	SaveTrade(ctx context.Context, t *models.LoggedTrade) error
	GetTrade(ctx context.Context, id string) (*models.LoggedTrade, error)
	ListTrades(ctx context.Context) ([]models.LoggedTrade, error)
	AppendMessage(ctx context.Context, m *models.SentMessage) error
	ListMessages(ctx context.Context) ([]models.SentMessage, error)
	SaveSettings(ctx context.Context, s *models.NotifierSettings) error
	LoadSettings(ctx context.Context) (*models.NotifierSettings, error)
}

// ScanPublisher fans finished scans out to downstream consumers.
type ScanPublisher interface {
	PublishScan(ctx context.Context, r *models.ScanResult) error
	Close() error
}

// ScanArchive keeps scan history for later queries.
type ScanArchive interface {
	Init(ctx context.Context) error
	StoreScan(ctx context.Context, r *models.ScanResult) error
	RecentCandidates(ctx context.Context, symbol string, limit int) ([]models.ArchivedCandidate, error)
	Close() error
}

// Locker guards a named critical section, possibly across processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Metrics interface {
	RecordScan(result string, seconds float64)
	RecordCandidates(n int)
	RecordRecommendations(n int)
	RecordSentiment(asset string, score float64)
	RecordNotification(result string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
