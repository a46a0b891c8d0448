package models

import "time"

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Valid reports whether d is LONG or SHORT.
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// AnalystPick is the advisor's categorical call on one candidate.
type AnalystPick struct {
	Pair           string    `json:"pair"`
	Recommendation Direction `json:"recommendation"`
	Justification  string    `json:"justification"`
}

type GridLevel struct {
	Price float64 `json:"price"`
	Size  string  `json:"size"`
}

type TradeRecommendation struct {
	ID                     string      `json:"id"`
	Pair                   string      `json:"pair"`
	Recommendation         Direction   `json:"recommendation"`
	Justification          string      `json:"justification"`
	EntryPrice             float64     `json:"entryPrice"`
	TakeProfit             float64     `json:"takeProfit"`
	StopLoss               float64     `json:"stopLoss"`
	GridLevels             []GridLevel `json:"gridLevels"`
	EstimatedProfitPercent float64     `json:"estimatedProfitPercent"`
}

// ScanResult is everything one successful scan cycle produced.
type ScanResult struct {
	RunID           string                `json:"runId"`
	StartedAt       time.Time             `json:"startedAt"`
	FinishedAt      time.Time             `json:"finishedAt"`
	Snapshot        MarketSnapshot        `json:"snapshot"`
	Sentiment       []SentimentResult     `json:"sentiment"`
	Recommendations []TradeRecommendation `json:"recommendations"`
}

// Recommendation finds a recommendation of this cycle by id.
func (r *ScanResult) Recommendation(id string) (TradeRecommendation, bool) {
	if r == nil {
		return TradeRecommendation{}, false
	}
	for _, rec := range r.Recommendations {
		if rec.ID == id {
			return rec, true
		}
	}
	return TradeRecommendation{}, false
}

// ScanEvent is published on the scan topic after each successful cycle.
type ScanEvent struct {
	Type            string                `json:"type"`
	RunID           string                `json:"runId"`
	Trend           Trend                 `json:"trend"`
	Reference       ReferenceQuote        `json:"reference"`
	Candidates      []Candidate           `json:"candidates"`
	Sentiment       []SentimentResult     `json:"sentiment"`
	Recommendations []TradeRecommendation `json:"recommendations"`
	FinishedAt      time.Time             `json:"finishedAt"`
}

const ScanEventCompleted = "scan.completed"

// NewScanEvent flattens a result into its wire event.
func NewScanEvent(r *ScanResult) ScanEvent {
	return ScanEvent{
		Type:            ScanEventCompleted,
		RunID:           r.RunID,
		Trend:           r.Snapshot.Trend,
		Reference:       r.Snapshot.Reference,
		Candidates:      r.Snapshot.Candidates,
		Sentiment:       r.Sentiment,
		Recommendations: r.Recommendations,
		FinishedAt:      r.FinishedAt,
	}
}
