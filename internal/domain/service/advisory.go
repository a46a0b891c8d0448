package service

import (
	"context"

	"PerpScout/internal/domain/models"
)

// Advisor returns categorical picks for screened candidates.
// Numeric fields an advisor might produce are never trusted.
type Advisor interface {
	Advise(ctx context.Context, candidates []models.Candidate, trend models.Trend) ([]models.AnalystPick, error)
}

// Notifier delivers one formatted text message.
type Notifier interface {
	Notify(ctx context.Context, settings models.NotifierSettings, text string) error
}
