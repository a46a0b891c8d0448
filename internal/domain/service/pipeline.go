package service

import (
	"context"

	"PerpScout/internal/domain/models"
)

type MarketScreener interface {
	Screen(ctx context.Context) (*models.MarketSnapshot, error)
}

type SentimentAggregator interface {
	Aggregate(corpus models.SnippetCorpus) []models.SentimentResult
}

// RecommendationSynthesizer turns picks into plans; dropped picks come back as errors.
type RecommendationSynthesizer interface {
	Synthesize(runToken string, picks []models.AnalystPick, candidates []models.Candidate) ([]models.TradeRecommendation, []error)
}
