package models

// Requests for the HTTP API. Defined in domain for reuse by handlers and tests.

type RecommendationRequest struct {
	RecommendationID string `json:"recommendationId" validate:"required"`
}

type CloseTradeRequest struct {
	ID         string  `param:"id" validate:"required"`
	ClosePrice float64 `json:"closePrice" validate:"gte=0"`
}

type TelegramSettingsRequest struct {
	Token  string `json:"token" validate:"required"`
	ChatID string `json:"chatId" validate:"required"`
}

type ScanHistoryRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Limit  int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}
