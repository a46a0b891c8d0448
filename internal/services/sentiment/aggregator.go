package sentiment

import (
	"sort"

	"PerpScout/internal/domain/models"
	"PerpScout/pkg/util"
)

// Classification thresholds, both inclusive.
const (
	BullishThreshold = 66.0
	BearishThreshold = 39.0
	NeutralScore     = 50.0
)

// TextScorer scores a single snippet.
type TextScorer interface {
	Score(text string) float64
}

// Aggregator averages snippet scores per asset.
type Aggregator struct {
	scorer TextScorer
}

func NewAggregator(scorer TextScorer) *Aggregator {
	return &Aggregator{scorer: scorer}
}

// Aggregate returns one result per asset: corpus.Assets order first, then any
// remaining snippet keys sorted by name.
func (a *Aggregator) Aggregate(corpus models.SnippetCorpus) []models.SentimentResult {
	assets := orderedAssets(corpus)
	out := make([]models.SentimentResult, 0, len(assets))
	for _, asset := range assets {
		out = append(out, a.aggregateAsset(asset, corpus.Snippets[asset]))
	}
	return out
}

func (a *Aggregator) aggregateAsset(asset string, snippets []string) models.SentimentResult {
	if len(snippets) == 0 {
		return models.SentimentResult{Asset: asset, Score: NeutralScore, Status: models.SentimentNeutral}
	}
	var sum float64
	for _, s := range snippets {
		sum += a.scorer.Score(s)
	}
	score := util.Round2(sum / float64(len(snippets)))
	return models.SentimentResult{Asset: asset, Score: score, Status: Classify(score)}
}

// Classify maps a score to its label.
func Classify(score float64) models.SentimentStatus {
	switch {
	case score >= BullishThreshold:
		return models.SentimentBullish
	case score <= BearishThreshold:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

func orderedAssets(corpus models.SnippetCorpus) []string {
	seen := make(map[string]struct{}, len(corpus.Assets))
	assets := make([]string, 0, len(corpus.Assets)+len(corpus.Snippets))
	for _, a := range corpus.Assets {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		assets = append(assets, a)
	}
	var extra []string
	for a := range corpus.Snippets {
		if _, ok := seen[a]; !ok {
			extra = append(extra, a)
		}
	}
	sort.Strings(extra)
	return append(assets, extra...)
}
