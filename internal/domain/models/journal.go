package models

import "time"

type TradeStatus string

const (
	TradeActive TradeStatus = "Active"
	TradeClosed TradeStatus = "Closed"
)

// LoggedTrade is a recommendation the operator chose to track.
type LoggedTrade struct {
	ID             string      `json:"id"`
	Pair           string      `json:"pair"`
	Recommendation Direction   `json:"recommendation"`
	EntryPrice     float64     `json:"entryPrice"`
	TakeProfit     float64     `json:"takeProfit"`
	StopLoss       float64     `json:"stopLoss"`
	Status         TradeStatus `json:"status"`
	LogTime        time.Time   `json:"logTime"`
	ClosePrice     *float64    `json:"closePrice,omitempty"`
	PnLPercent     *float64    `json:"pnlPercent,omitempty"`
	ClosedAt       *time.Time  `json:"closedAt,omitempty"`
}

// SentMessage is one entry of the notification history.
type SentMessage struct {
	ID               string    `json:"id"`
	RecommendationID string    `json:"recommendationId"`
	Text             string    `json:"text"`
	Timestamp        time.Time `json:"timestamp"`
	Delivered        bool      `json:"delivered"`
	Error            string    `json:"error,omitempty"`
}

type NotifierSettings struct {
	Token  string `json:"token"`
	ChatID string `json:"chatId"`
}

// Configured reports whether both token and chat id are set.
func (s NotifierSettings) Configured() bool {
	return s.Token != "" && s.ChatID != ""
}
