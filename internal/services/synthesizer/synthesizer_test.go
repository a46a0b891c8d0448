package synthesizer

import (
	"testing"

	"PerpScout/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidates = []models.Candidate{
	{Symbol: "SOLUSDT", LastPrice: 100},
	{Symbol: "DOGEUSDT", LastPrice: 0.1234},
}

func TestSynthesizeLong(t *testing.T) {
	recs, dropped := New().Synthesize("run1", []models.AnalystPick{
		{Pair: "SOLUSDT", Recommendation: models.DirectionLong, Justification: "momentum"},
	}, candidates)

	require.Empty(t, dropped)
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "SOLUSDT-run1", r.ID)
	assert.Equal(t, 100.0, r.EntryPrice)
	assert.Equal(t, 110.0, r.TakeProfit)
	assert.Equal(t, 95.0, r.StopLoss)
	assert.Equal(t, []models.GridLevel{{Price: 101, Size: "33%"}, {Price: 102, Size: "33%"}, {Price: 103, Size: "34%"}}, r.GridLevels)
	assert.Equal(t, 9.9, r.EstimatedProfitPercent)
	assert.Equal(t, "momentum", r.Justification)
}

func TestSynthesizeShort(t *testing.T) {
	recs, _ := New().Synthesize("run1", []models.AnalystPick{
		{Pair: "SOLUSDT", Recommendation: models.DirectionShort},
	}, candidates)

	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, 100.0, r.EntryPrice)
	assert.Equal(t, 90.0, r.TakeProfit)
	assert.Equal(t, 105.0, r.StopLoss)
	assert.Equal(t, []models.GridLevel{{Price: 99, Size: "33%"}, {Price: 98, Size: "33%"}, {Price: 97, Size: "34%"}}, r.GridLevels)
}

func TestSynthesizeSmallPrice(t *testing.T) {
	recs, _ := New().Synthesize("r", []models.AnalystPick{{Pair: "DOGEUSDT", Recommendation: models.DirectionLong}}, candidates)
	require.Len(t, recs, 1)
	assert.Equal(t, 0.1234, recs[0].EntryPrice)
	assert.Equal(t, 0.13574, recs[0].TakeProfit)
	assert.Equal(t, 0.11723, recs[0].StopLoss)
}

func TestSynthesizeDropsUnknownAndMalformedPicks(t *testing.T) {
	recs, dropped := New().Synthesize("r", []models.AnalystPick{
		{Pair: "PEPEUSDT", Recommendation: models.DirectionLong},
		{Pair: "", Recommendation: models.DirectionLong},
		{Pair: "SOLUSDT", Recommendation: "HOLD"},
		{Pair: " dogeusdt ", Recommendation: "short"},
	}, candidates)

	require.Len(t, recs, 1)
	assert.Equal(t, "DOGEUSDT", recs[0].Pair)
	assert.Equal(t, models.DirectionShort, recs[0].Recommendation)

	require.Len(t, dropped, 3)
	for _, err := range dropped {
		var mp *models.MalformedPickError
		assert.ErrorAs(t, err, &mp)
	}
}

func TestSynthesizeIDsAreUniqueWithinRun(t *testing.T) {
	recs, _ := New().Synthesize("abc", []models.AnalystPick{
		{Pair: "SOLUSDT", Recommendation: models.DirectionLong},
		{Pair: "SOLUSDT", Recommendation: models.DirectionShort},
	}, candidates)

	require.Len(t, recs, 2)
	assert.Equal(t, "SOLUSDT-abc", recs[0].ID)
	assert.Equal(t, "SOLUSDT-abc-2", recs[1].ID)
}

func TestSynthesizeEmptyInput(t *testing.T) {
	recs, dropped := New().Synthesize("r", nil, candidates)
	assert.Empty(t, recs)
	assert.Empty(t, dropped)
}
