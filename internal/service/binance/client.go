package binance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"PerpScout/internal/domain/models"
	xhttp "PerpScout/pkg/http"
	applogger "PerpScout/pkg/logger"
	"PerpScout/pkg/util"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	tickerPath  = "/fapi/v1/ticker/24hr"
	premiumPath = "/fapi/v1/premiumIndex"
	pricePath   = "/fapi/v1/ticker/price"
)

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
	OpenInterest       string `json:"openInterest"`
}

type premiumIndex struct {
	Symbol          string `json:"symbol"`
	LastFundingRate string `json:"lastFundingRate"`
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit throttles outgoing requests.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithBreaker trips after the given number of consecutive failures and stays open for timeout.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		c.breakerFailures = failures
		c.breakerTimeout = timeout
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client reads the USDT-margined futures REST API.
type Client struct {
	baseURL         string
	http            *xhttp.Client
	limiter         *rate.Limiter
	breaker         *gobreaker.CircuitBreaker
	breakerFailures uint32
	breakerTimeout  time.Duration
	logger          *applogger.Logger
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:         "https://fapi.binance.com",
		limiter:         rate.NewLimiter(rate.Limit(5), 10),
		breakerFailures: 3,
		breakerTimeout:  60 * time.Second,
		logger:          applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	}

	failures := c.breakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "binance-futures",
		Interval: 60 * time.Second,
		Timeout:  c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// calls abandoned by the caller do not count against the exchange
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	})
	return c
}

// Tickers fetches the 24h ticker feed. Unparsable numeric fields become NaN
// so downstream screening drops the instrument.
func (c *Client) Tickers(ctx context.Context) ([]models.Ticker, error) {
	var raw []ticker24h
	if err := c.get(ctx, "ticker24h", tickerPath, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Ticker, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.Ticker{
			Symbol:             r.Symbol,
			LastPrice:          util.ParseFloatDefault(r.LastPrice, math.NaN()),
			PriceChangePercent: util.ParseFloatDefault(r.PriceChangePercent, math.NaN()),
			QuoteVolume:        util.ParseFloatDefault(r.QuoteVolume, math.NaN()),
			OpenInterest:       util.ParseFloatDefault(r.OpenInterest, math.NaN()),
		})
	}
	return out, nil
}

// FundingRates fetches the premium index feed. Unparsable rates count as 0.
func (c *Client) FundingRates(ctx context.Context) ([]models.FundingRate, error) {
	var raw []premiumIndex
	if err := c.get(ctx, "premiumIndex", premiumPath, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]models.FundingRate, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.FundingRate{
			Symbol:          r.Symbol,
			LastFundingRate: util.ParseFloatDefault(r.LastFundingRate, 0),
		})
	}
	return out, nil
}

// LastPrice fetches the latest traded price of one symbol.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	var raw tickerPrice
	q := map[string][]string{"symbol": {strings.ToUpper(symbol)}}
	if err := c.get(ctx, "tickerPrice", pricePath, q, &raw); err != nil {
		return 0, err
	}
	p, ok := util.ParseFloat(raw.Price)
	if !ok {
		return 0, &models.DataFetchError{Feed: "tickerPrice", Err: fmt.Errorf("bad price %q for %s", raw.Price, symbol)}
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, feed, path string, query map[string][]string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL + path,
			QueryParams: query,
		}, dest)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fe := &models.DataFetchError{Feed: feed, Err: err}
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			fe.StatusCode = se.Code
		}
		c.logger.Warn("feed request failed", applogger.String("feed", feed), applogger.Error(err))
		return fe
	}

	c.logger.Debug("feed fetched",
		applogger.String("feed", feed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}
