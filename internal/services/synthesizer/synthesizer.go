package synthesizer

import (
	"fmt"
	"strings"

	"PerpScout/internal/domain/models"

	"github.com/shopspring/decimal"
)

// EstimatedProfitPercent is reported on every plan as-is.
const EstimatedProfitPercent = 9.9

type gridStep struct {
	factor decimal.Decimal
	size   string
}

type plan struct {
	takeProfit decimal.Decimal
	stopLoss   decimal.Decimal
	grid       [3]gridStep
}

var plans = map[models.Direction]plan{
	models.DirectionLong: {
		takeProfit: decimal.RequireFromString("1.10"),
		stopLoss:   decimal.RequireFromString("0.95"),
		grid: [3]gridStep{
			{decimal.RequireFromString("1.01"), "33%"},
			{decimal.RequireFromString("1.02"), "33%"},
			{decimal.RequireFromString("1.03"), "34%"},
		},
	},
	models.DirectionShort: {
		takeProfit: decimal.RequireFromString("0.90"),
		stopLoss:   decimal.RequireFromString("1.05"),
		grid: [3]gridStep{
			{decimal.RequireFromString("0.99"), "33%"},
			{decimal.RequireFromString("0.98"), "33%"},
			{decimal.RequireFromString("0.97"), "34%"},
		},
	},
}

// Synthesizer derives trade plans from analyst picks and candidate prices.
type Synthesizer struct{}

func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize builds one recommendation per usable pick, in pick order.
// Unusable picks are dropped and reported as *models.MalformedPickError in the
// second return value; they never fail the batch.
func (s *Synthesizer) Synthesize(runToken string, picks []models.AnalystPick, candidates []models.Candidate) ([]models.TradeRecommendation, []error) {
	bySymbol := make(map[string]models.Candidate, len(candidates))
	for _, c := range candidates {
		bySymbol[c.Symbol] = c
	}

	recs := make([]models.TradeRecommendation, 0, len(picks))
	var dropped []error
	seen := make(map[string]int, len(picks))

	for _, p := range picks {
		pair := strings.ToUpper(strings.TrimSpace(p.Pair))
		dir := models.Direction(strings.ToUpper(strings.TrimSpace(string(p.Recommendation))))

		if pair == "" {
			dropped = append(dropped, &models.MalformedPickError{Pair: p.Pair, Reason: "missing pair"})
			continue
		}
		if !dir.Valid() {
			dropped = append(dropped, &models.MalformedPickError{Pair: pair, Reason: fmt.Sprintf("unknown direction %q", p.Recommendation)})
			continue
		}
		c, ok := bySymbol[pair]
		if !ok {
			dropped = append(dropped, &models.MalformedPickError{Pair: pair, Reason: "not in candidate set"})
			continue
		}

		seen[pair]++
		id := pair + "-" + runToken
		if n := seen[pair]; n > 1 {
			id = fmt.Sprintf("%s-%d", id, n)
		}

		recs = append(recs, build(id, pair, dir, p.Justification, c.LastPrice))
	}
	return recs, dropped
}

func build(id, pair string, dir models.Direction, justification string, price float64) models.TradeRecommendation {
	pl := plans[dir]
	p := decimal.NewFromFloat(price)

	grid := make([]models.GridLevel, 0, len(pl.grid))
	for _, g := range pl.grid {
		grid = append(grid, models.GridLevel{Price: p.Mul(g.factor).InexactFloat64(), Size: g.size})
	}

	return models.TradeRecommendation{
		ID:                     id,
		Pair:                   pair,
		Recommendation:         dir,
		Justification:          justification,
		EntryPrice:             price,
		TakeProfit:             p.Mul(pl.takeProfit).InexactFloat64(),
		StopLoss:               p.Mul(pl.stopLoss).InexactFloat64(),
		GridLevels:             grid,
		EstimatedProfitPercent: EstimatedProfitPercent,
	}
}
