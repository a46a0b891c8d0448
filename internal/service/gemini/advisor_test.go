package gemini

import (
	"context"
	"errors"
	"testing"

	"PerpScout/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text   string
	err    error
	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

var candidates = []models.Candidate{
	{Symbol: "SOLUSDT", LastPrice: 142.37, PriceChangePercent: 5.2, QuoteVolume: 5e8, OpenInterest: 3e6, Volatility: 5.2},
	{Symbol: "DOGEUSDT", LastPrice: 0.1234, PriceChangePercent: -3.1, QuoteVolume: 2e8, OpenInterest: 9e6, Volatility: 3.1},
}

func TestAdviseParsesPicks(t *testing.T) {
	gen := &fakeGenerator{text: `[
		{"pair":"SOLUSDT","recommendation":"LONG","justification":"momentum","entryPrice":1,"takeProfit":2,"stopLoss":0.5,"gridLevels":[]},
		{"pair":"DOGEUSDT","recommendation":"SHORT","justification":"weak","entryPrice":1,"takeProfit":2,"stopLoss":0.5,"gridLevels":[]}
	]`}
	a := newAdvisor(gen, WithModel("test-model"), WithTemperature(0.2))

	picks, err := a.Advise(context.Background(), candidates, models.TrendBullish)
	require.NoError(t, err)
	assert.Equal(t, []models.AnalystPick{
		{Pair: "SOLUSDT", Recommendation: models.DirectionLong, Justification: "momentum"},
		{Pair: "DOGEUSDT", Recommendation: models.DirectionShort, Justification: "weak"},
	}, picks)

	assert.Equal(t, "test-model", gen.model)
	require.NotNil(t, gen.config.Temperature)
	assert.Equal(t, float32(0.2), *gen.config.Temperature)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	assert.Contains(t, gen.prompt, `"Bullish"`)
	assert.Contains(t, gen.prompt, `"symbol": "SOLUSDT"`)
	assert.Contains(t, gen.prompt, "best 3 opportunities")
}

func TestAdviseCapsPicks(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n[{\"pair\":\"A\",\"recommendation\":\"LONG\",\"justification\":\"\"},{\"pair\":\"B\",\"recommendation\":\"LONG\",\"justification\":\"\"}]\n```"}
	picks, err := newAdvisor(gen, WithMaxPicks(1)).Advise(context.Background(), candidates, models.TrendNeutral)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "A", picks[0].Pair)
}

func TestAdviseMalformedOutput(t *testing.T) {
	for _, text := range []string{"", "not json", `{"pair":"SOLUSDT"}`} {
		_, err := newAdvisor(&fakeGenerator{text: text}).Advise(context.Background(), candidates, models.TrendNeutral)
		var ae *models.AdvisoryError
		assert.ErrorAs(t, err, &ae, "output %q", text)
	}
}

func TestAdviseTransportFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := newAdvisor(&fakeGenerator{err: boom}).Advise(context.Background(), candidates, models.TrendNeutral)
	var ae *models.AdvisoryError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, boom)
}

func TestAdviseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAdvisor(&fakeGenerator{err: context.Canceled}).Advise(ctx, candidates, models.TrendNeutral)
	assert.ErrorIs(t, err, context.Canceled)
	var ae *models.AdvisoryError
	assert.False(t, errors.As(err, &ae))
}

func TestAdviseWithoutKey(t *testing.T) {
	a, err := New(context.Background(), "")
	require.NoError(t, err)
	_, err = a.Advise(context.Background(), candidates, models.TrendNeutral)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
