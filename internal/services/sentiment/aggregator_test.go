package sentiment

import (
	"testing"

	"PerpScout/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedScorer struct {
	scores map[string]float64
	calls  int
}

func (f *fixedScorer) Score(text string) float64 {
	f.calls++
	return f.scores[text]
}

func TestAggregateEmptySnippetsIsNeutral(t *testing.T) {
	sc := &fixedScorer{}
	agg := NewAggregator(sc)

	res := agg.Aggregate(models.SnippetCorpus{
		Assets:   []string{"BTC", "PEPE"},
		Snippets: map[string][]string{"BTC": {}},
	})

	require.Len(t, res, 2)
	for _, r := range res {
		assert.Equal(t, 50.0, r.Score)
		assert.Equal(t, models.SentimentNeutral, r.Status)
	}
	assert.Zero(t, sc.calls)
}

func TestAggregateMeanIsRoundedTo2Decimals(t *testing.T) {
	sc := &fixedScorer{scores: map[string]float64{"a": 60, "b": 70, "c": 70}}
	res := NewAggregator(sc).Aggregate(models.SnippetCorpus{
		Assets:   []string{"ETH"},
		Snippets: map[string][]string{"ETH": {"a", "b", "c"}},
	})
	require.Len(t, res, 1)
	assert.Equal(t, 66.67, res[0].Score)
	assert.Equal(t, models.SentimentBullish, res[0].Status)
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.SentimentStatus
	}{
		{66, models.SentimentBullish},
		{65, models.SentimentNeutral},
		{65.99, models.SentimentNeutral},
		{40, models.SentimentNeutral},
		{39, models.SentimentBearish},
		{0, models.SentimentBearish},
		{100, models.SentimentBullish},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.score), "score %v", tc.score)
	}
}

func TestAggregatePreservesAssetOrder(t *testing.T) {
	sc := &fixedScorer{scores: map[string]float64{"x": 50}}
	res := NewAggregator(sc).Aggregate(models.SnippetCorpus{
		Assets: []string{"SOL", "BTC", "ETH"},
		Snippets: map[string][]string{
			"BTC": {"x"},
			"ZZZ": {"x"},
			"AAA": {"x"},
			"SOL": {"x"},
			"ETH": {"x"},
		},
	})
	got := make([]string, 0, len(res))
	for _, r := range res {
		got = append(got, r.Asset)
	}
	assert.Equal(t, []string{"SOL", "BTC", "ETH", "AAA", "ZZZ"}, got)
}

func TestAggregateDefaultCorpus(t *testing.T) {
	agg := NewAggregator(NewScorer(DefaultLexicon()))
	res := agg.Aggregate(DefaultCorpus())

	require.Len(t, res, 6)
	assert.Equal(t, "BTC", res[0].Asset)
	assert.Equal(t, 55.0, res[0].Score)
	assert.Equal(t, models.SentimentNeutral, res[0].Status)
	assert.Equal(t, "ETH", res[1].Asset)
	assert.Equal(t, 66.67, res[1].Score)
	assert.Equal(t, models.SentimentBullish, res[1].Status)
}

func TestParseCorpus(t *testing.T) {
	c, err := ParseCorpus([]byte("assets: [BTC]\nsnippets:\n  BTC: [\"moon\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC"}, c.Assets)
	assert.Equal(t, []string{"moon"}, c.Snippets["BTC"])

	_, err = ParseCorpus([]byte("assets: {"))
	assert.Error(t, err)
}

func TestAggregateClassifiesReportedScore(t *testing.T) {
	// raw mean 65.995 reports as 66 and must classify as Bullish
	snippets := make([]string, 0, 1000)
	for i := 0; i < 199; i++ {
		snippets = append(snippets, "pump moon")
	}
	for i := 0; i < 801; i++ {
		snippets = append(snippets, "saylor sec")
	}
	agg := NewAggregator(NewScorer(DefaultLexicon()))

	res := agg.Aggregate(models.SnippetCorpus{
		Assets:   []string{"BTC"},
		Snippets: map[string][]string{"BTC": snippets},
	})

	require.Len(t, res, 1)
	assert.Equal(t, 66.0, res[0].Score)
	assert.Equal(t, models.SentimentBullish, res[0].Status)
	assert.Equal(t, Classify(res[0].Score), res[0].Status)
}
