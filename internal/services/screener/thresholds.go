package screener

import (
	"math"
	"strings"

	"PerpScout/internal/domain/models"
)

// Thresholds are the screening predicates. All of them must pass.
type Thresholds struct {
	QuoteAsset      string
	MinQuoteVolume  float64 // strict
	MinOpenInterest float64 // strict
	MinVolatility   float64 // inclusive, percentage points
	MaxAbsFunding   float64 // inclusive
	MaxCandidates   int
	TrendBand       float64 // strict on both sides
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		QuoteAsset:      "USDT",
		MinQuoteVolume:  10_000_000,
		MinOpenInterest: 1_000_000,
		MinVolatility:   2,
		MaxAbsFunding:   0.001,
		MaxCandidates:   5,
		TrendBand:       1,
	}
}

// Eligible reports whether c passes every predicate.
func (t Thresholds) Eligible(c models.Candidate, reference string) bool {
	return strings.HasSuffix(c.Symbol, t.QuoteAsset) &&
		c.Symbol != reference &&
		c.QuoteVolume > t.MinQuoteVolume &&
		c.OpenInterest > t.MinOpenInterest &&
		c.Volatility >= t.MinVolatility &&
		math.Abs(c.FundingRate) <= t.MaxAbsFunding
}

// Trend classifies the reference change percent.
func (t Thresholds) Trend(changePercent float64) models.Trend {
	switch {
	case changePercent > t.TrendBand:
		return models.TrendBullish
	case changePercent < -t.TrendBand:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}
