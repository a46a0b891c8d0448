package screener

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"PerpScout/internal/domain/models"
	domrepo "PerpScout/internal/domain/repository"
	applogger "PerpScout/pkg/logger"
	"PerpScout/pkg/util"
)

const (
	feedTickers = "ticker24h"
	feedFunding = "premiumIndex"

	unavailable = "N/A"
)

type Option func(*Screener)

// WithReferenceSymbol sets the instrument the trend is derived from.
func WithReferenceSymbol(symbol string) Option {
	return func(s *Screener) { s.reference = symbol }
}

func WithThresholds(t Thresholds) Option {
	return func(s *Screener) { s.th = t }
}

func WithLogger(l *applogger.Logger) Option {
	return func(s *Screener) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Screener) { s.now = now }
}

// Screener turns the ticker and funding feeds into a ranked candidate set.
type Screener struct {
	feed      domrepo.MarketFeed
	reference string
	th        Thresholds
	logger    *applogger.Logger
	now       func() time.Time
}

func New(feed domrepo.MarketFeed, opts ...Option) *Screener {
	s := &Screener{
		feed:      feed,
		reference: "BTCUSDT",
		th:        DefaultThresholds(),
		logger:    applogger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen fetches both feeds concurrently and builds the snapshot.
// Either feed failing fails the whole screen; there are no partial results.
func (s *Screener) Screen(ctx context.Context) (*models.MarketSnapshot, error) {
	tickers, funding, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]float64, len(funding))
	for _, f := range funding {
		rates[f.Symbol] = f.LastFundingRate
	}

	snap := &models.MarketSnapshot{
		Trend:     models.TrendNeutral,
		Reference: models.ReferenceQuote{Symbol: s.reference, PriceDisplay: unavailable, ChangeDisplay: "0.00"},
		TakenAt:   s.now(),
	}

	candidates := make([]models.Candidate, 0, len(tickers))
	for _, t := range tickers {
		if t.Symbol == s.reference {
			snap.Reference = s.referenceQuote(t)
			snap.Trend = s.th.Trend(t.PriceChangePercent)
			continue
		}
		if !finite(t.LastPrice, t.PriceChangePercent, t.QuoteVolume, t.OpenInterest) {
			continue
		}
		c := models.Candidate{
			Symbol:             t.Symbol,
			LastPrice:          t.LastPrice,
			PriceChangePercent: t.PriceChangePercent,
			QuoteVolume:        t.QuoteVolume,
			OpenInterest:       t.OpenInterest,
			Volatility:         math.Abs(t.PriceChangePercent),
			FundingRate:        rates[t.Symbol],
		}
		if s.th.Eligible(c, s.reference) {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].QuoteVolume > candidates[j].QuoteVolume
	})
	if s.th.MaxCandidates > 0 && len(candidates) > s.th.MaxCandidates {
		candidates = candidates[:s.th.MaxCandidates]
	}
	snap.Candidates = candidates

	s.logger.Debug("screen complete",
		applogger.Int("tickers", len(tickers)),
		applogger.Int("candidates", len(candidates)),
		applogger.String("trend", string(snap.Trend)),
	)
	return snap, nil
}

func (s *Screener) referenceQuote(t models.Ticker) models.ReferenceQuote {
	q := models.ReferenceQuote{Symbol: t.Symbol, PriceDisplay: unavailable, ChangeDisplay: "0.00"}
	if finite(t.LastPrice) {
		q.Available = true
		q.Price = t.LastPrice
		q.PriceDisplay = util.FormatGrouped(t.LastPrice)
	}
	if finite(t.PriceChangePercent) {
		q.ChangePercent = t.PriceChangePercent
		q.ChangeDisplay = util.FormatFixed2(t.PriceChangePercent)
	}
	return q
}

// fetch runs both feed calls and cancels the sibling as soon as one fails.
func (s *Screener) fetch(parent context.Context) ([]models.Ticker, []models.FundingRate, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.feed.Tickers(ctx)
		ch <- item{feedTickers, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := s.feed.FundingRates(ctx)
		ch <- item{feedFunding, v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	var (
		tickers  []models.Ticker
		funding  []models.FundingRate
		firstErr error
	)
	for it := range ch {
		if it.err != nil {
			if firstErr == nil {
				firstErr = asFetchError(it.name, it.err)
				cancel()
			}
			continue
		}
		switch it.name {
		case feedTickers:
			tickers = it.val.([]models.Ticker)
		case feedFunding:
			funding = it.val.([]models.FundingRate)
		}
	}

	// abandoned by the caller: report cancellation, not a feed failure
	if err := parent.Err(); err != nil {
		return nil, nil, err
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return tickers, funding, nil
}

func asFetchError(feed string, err error) error {
	var fe *models.DataFetchError
	if errors.As(err, &fe) {
		return err
	}
	return &models.DataFetchError{Feed: feed, Err: err}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
