package models

type SentimentStatus string

const (
	SentimentBullish SentimentStatus = "Bullish"
	SentimentBearish SentimentStatus = "Bearish"
	SentimentNeutral SentimentStatus = "Neutral"
)

type SentimentResult struct {
	Asset  string          `json:"asset"`
	Score  float64         `json:"score"`
	Status SentimentStatus `json:"status"`
}

// SnippetCorpus maps tracked assets to text snippets. Assets fixes the result order.
type SnippetCorpus struct {
	Assets   []string            `yaml:"assets" json:"assets"`
	Snippets map[string][]string `yaml:"snippets" json:"snippets"`
}
