package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"PerpScout/internal/domain/models"
	drepo "PerpScout/internal/domain/repository"
	applogger "PerpScout/pkg/logger"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TradeJournal tracks recommendations the operator decided to follow.
type TradeJournal struct {
	store  drepo.JournalStore
	prices drepo.PriceSource
	logger *applogger.Logger
	now    func() time.Time
}

func NewTradeJournal(store drepo.JournalStore, prices drepo.PriceSource, l *applogger.Logger) *TradeJournal {
	if l == nil {
		l = applogger.Nop()
	}
	return &TradeJournal{store: store, prices: prices, logger: l, now: time.Now}
}

// Log records rec as an active trade.
func (j *TradeJournal) Log(ctx context.Context, rec models.TradeRecommendation) (*models.LoggedTrade, error) {
	_, err := j.store.GetTrade(ctx, rec.ID)
	switch {
	case err == nil:
		return nil, models.ErrTradeAlreadyLogged
	case !errors.Is(err, models.ErrTradeNotFound):
		return nil, fmt.Errorf("lookup trade: %w", err)
	}

	t := &models.LoggedTrade{
		ID:             rec.ID,
		Pair:           rec.Pair,
		Recommendation: rec.Recommendation,
		EntryPrice:     rec.EntryPrice,
		TakeProfit:     rec.TakeProfit,
		StopLoss:       rec.StopLoss,
		Status:         models.TradeActive,
		LogTime:        j.now(),
	}
	if err := j.store.SaveTrade(ctx, t); err != nil {
		return nil, fmt.Errorf("save trade: %w", err)
	}
	j.logger.Info("trade logged", applogger.String("id", t.ID), applogger.String("pair", t.Pair))
	return t, nil
}

// Close settles an active trade. A non-positive closePrice is resolved from the market.
func (j *TradeJournal) Close(ctx context.Context, id string, closePrice float64) (*models.LoggedTrade, error) {
	t, err := j.store.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TradeClosed {
		return nil, models.ErrTradeClosed
	}

	if closePrice <= 0 {
		closePrice, err = j.prices.LastPrice(ctx, t.Pair)
		if err != nil {
			return nil, fmt.Errorf("resolve close price: %w", err)
		}
	}

	pnl := PnLPercent(t.Recommendation, t.EntryPrice, closePrice)
	closedAt := j.now()
	t.Status = models.TradeClosed
	t.ClosePrice = &closePrice
	t.PnLPercent = &pnl
	t.ClosedAt = &closedAt

	if err := j.store.SaveTrade(ctx, t); err != nil {
		return nil, fmt.Errorf("save trade: %w", err)
	}
	j.logger.Info("trade closed",
		applogger.String("id", t.ID),
		applogger.Float64("close_price", closePrice),
		applogger.Float64("pnl_percent", pnl),
	)
	return t, nil
}

// List returns every trade, newest first.
func (j *TradeJournal) List(ctx context.Context) ([]models.LoggedTrade, error) {
	trades, err := j.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trades, func(a, b int) bool {
		return trades[a].LogTime.After(trades[b].LogTime)
	})
	return trades, nil
}

// PnLPercent is the signed return of a position in percent, rounded to 2 decimals.
func PnLPercent(dir models.Direction, entry, exit float64) float64 {
	if entry == 0 {
		return 0
	}
	e := decimal.NewFromFloat(entry)
	pnl := decimal.NewFromFloat(exit).Sub(e).Div(e).Mul(hundred)
	if dir == models.DirectionShort {
		pnl = pnl.Neg()
	}
	return pnl.Round(2).InexactFloat64()
}
