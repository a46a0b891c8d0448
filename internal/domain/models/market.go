package models

import "time"

// Trend is the coarse market direction derived from the reference instrument.
type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
	TrendNeutral Trend = "Neutral"
)

// Ticker is one row of the 24h ticker feed after parsing.
type Ticker struct {
	Symbol             string
	LastPrice          float64
	PriceChangePercent float64
	QuoteVolume        float64
	OpenInterest       float64
}

// FundingRate is one row of the funding feed after parsing.
type FundingRate struct {
	Symbol          string
	LastFundingRate float64
}

// Candidate is an instrument that survived screening.
type Candidate struct {
	Symbol             string  `json:"symbol"`
	LastPrice          float64 `json:"lastPrice"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	QuoteVolume        float64 `json:"quoteVolume"`
	OpenInterest       float64 `json:"openInterest"`
	Volatility         float64 `json:"volatility"`
	FundingRate        float64 `json:"fundingRate"`
}

// ReferenceQuote carries the reference instrument used for the trend.
// Price and ChangePercent are meaningful only when Available is true.
type ReferenceQuote struct {
	Symbol        string  `json:"symbol"`
	Available     bool    `json:"available"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
	PriceDisplay  string  `json:"priceDisplay"`
	ChangeDisplay string  `json:"changeDisplay"`
}

type MarketSnapshot struct {
	Candidates []Candidate    `json:"candidates"`
	Trend      Trend          `json:"trend"`
	Reference  ReferenceQuote `json:"reference"`
	TakenAt    time.Time      `json:"takenAt"`
}

// ArchivedCandidate is a candidate row read back from the scan archive.
type ArchivedCandidate struct {
	RunID string    `json:"runId"`
	Rank  int       `json:"rank"`
	Trend Trend     `json:"trend"`
	At    time.Time `json:"at"`
	Candidate
}
