package binance

import (
	"context"
	"strings"

	drepo "PerpScout/internal/domain/repository"
)

// PriceResolver answers from the live mark price book and falls back to REST.
type PriceResolver struct {
	stream drepo.MarkPriceStream
	rest   drepo.PriceSource
}

// NewPriceResolver accepts a nil stream. A disconnected stream is skipped.
func NewPriceResolver(stream drepo.MarkPriceStream, rest drepo.PriceSource) *PriceResolver {
	return &PriceResolver{stream: stream, rest: rest}
}

func (r *PriceResolver) LastPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(symbol)
	if r.stream != nil && r.stream.IsConnected() {
		if p, ok := r.stream.MarkPrice(symbol); ok {
			return p, nil
		}
	}
	return r.rest.LastPrice(ctx, symbol)
}

var _ drepo.PriceSource = (*PriceResolver)(nil)
