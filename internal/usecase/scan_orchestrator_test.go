package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"PerpScout/internal/domain/models"
	"PerpScout/internal/services/synthesizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sol  = models.Candidate{Symbol: "SOLUSDT", LastPrice: 100, QuoteVolume: 5e8}
	doge = models.Candidate{Symbol: "DOGEUSDT", LastPrice: 0.1234, QuoteVolume: 2e8}
)

type orchestratorFixture struct {
	screener  *fakeScreener
	advisor   *fakeAdvisor
	metrics   *recordingMetrics
	publisher *fakePublisher
	archive   *fakeArchive
	orch      *ScanOrchestrator
}

func newOrchestratorFixture(snap *models.MarketSnapshot, adv *fakeAdvisor) *orchestratorFixture {
	f := &orchestratorFixture{
		screener:  &fakeScreener{snap: snap},
		advisor:   adv,
		metrics:   newRecordingMetrics(),
		publisher: &fakePublisher{},
		archive:   &fakeArchive{},
	}
	agg := &fakeAggregator{results: []models.SentimentResult{{Asset: "BTC", Score: 55, Status: models.SentimentNeutral}}}
	f.orch = NewScanOrchestrator(f.screener, agg, models.SnippetCorpus{}, adv, synthesizer.New(), f.metrics,
		WithScanPublisher(f.publisher),
		WithScanArchive(f.archive),
		WithStatusInterval(5*time.Millisecond),
		WithRunIDs(func() string { return "run-1" }),
	)
	return f
}

func TestRunProducesRecommendations(t *testing.T) {
	adv := &fakeAdvisor{picks: []models.AnalystPick{
		{Pair: "SOLUSDT", Recommendation: models.DirectionLong, Justification: "momentum"},
		{Pair: "XYZUSDT", Recommendation: models.DirectionLong},
	}}
	f := newOrchestratorFixture(snapshot(models.TrendBullish, sol, doge), adv)
	var log statusLog

	res, err := f.orch.Run(context.Background(), log.add)
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, res.Recommendations, 1)
	rec := res.Recommendations[0]
	assert.Equal(t, "SOLUSDT-run-1", rec.ID)
	assert.Equal(t, 110.0, rec.TakeProfit)
	assert.Equal(t, 95.0, rec.StopLoss)
	assert.Len(t, res.Sentiment, 1)
	assert.Equal(t, models.TrendBullish, res.Snapshot.Trend)

	msgs := log.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, statusFetching, msgs[0])
	assert.Equal(t, "Market trend is Bullish. Analyzing pairs...", msgs[1])
	assert.Empty(t, f.orch.Status())

	assert.Len(t, f.publisher.published, 1)
	assert.Len(t, f.archive.stored, 1)
	assert.Equal(t, 1, f.metrics.scans["success"])
	assert.Equal(t, 1, f.metrics.errors["malformed_pick"])
}

func TestRunRotatesStatusWhileAdvisorWorks(t *testing.T) {
	adv := &fakeAdvisor{delay: 60 * time.Millisecond}
	f := newOrchestratorFixture(snapshot(models.TrendNeutral, sol), adv)
	var log statusLog

	_, err := f.orch.Run(context.Background(), log.add)
	require.NoError(t, err)
	assert.Contains(t, log.all(), "Filtering coins by volume and volatility...")
}

func TestRunScreenerFailureAborts(t *testing.T) {
	fe := &models.DataFetchError{Feed: "ticker24h", StatusCode: 503, Err: errors.New("unavailable")}
	adv := &fakeAdvisor{}
	f := newOrchestratorFixture(nil, adv)
	f.screener.err = fe

	res, err := f.orch.Run(context.Background(), nil)
	assert.Nil(t, res)
	var got *models.DataFetchError
	require.ErrorAs(t, err, &got)
	assert.Zero(t, adv.Calls())
	assert.Empty(t, f.publisher.published)
	assert.Empty(t, f.archive.stored)
	assert.Equal(t, 1, f.metrics.scans["failed"])
}

func TestRunAdvisorFailureAborts(t *testing.T) {
	adv := &fakeAdvisor{err: &models.AdvisoryError{Err: errors.New("bad json")}}
	f := newOrchestratorFixture(snapshot(models.TrendBearish, sol), adv)

	res, err := f.orch.Run(context.Background(), nil)
	assert.Nil(t, res)
	var ae *models.AdvisoryError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, models.FailureMessage(err), "Failed to complete analysis.")
	assert.Empty(t, f.publisher.published)
}

func TestRunWithoutCandidatesSkipsAdvisor(t *testing.T) {
	adv := &fakeAdvisor{}
	f := newOrchestratorFixture(snapshot(models.TrendNeutral), adv)

	res, err := f.orch.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Zero(t, adv.Calls())
}

func TestRunSinkFailuresAreNotFatal(t *testing.T) {
	adv := &fakeAdvisor{picks: []models.AnalystPick{{Pair: "SOLUSDT", Recommendation: models.DirectionShort}}}
	f := newOrchestratorFixture(snapshot(models.TrendBearish, sol), adv)
	f.publisher.err = errors.New("kafka down")
	f.archive.err = errors.New("clickhouse down")

	res, err := f.orch.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 1)
	assert.Equal(t, 1, f.metrics.errors["scan_publish"])
	assert.Equal(t, 1, f.metrics.errors["scan_archive"])
}

func TestRunCancelledEmitsNothing(t *testing.T) {
	adv := &fakeAdvisor{block: true, started: make(chan struct{}, 1)}
	f := newOrchestratorFixture(snapshot(models.TrendBullish, sol), adv)
	var log statusLog

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Run(ctx, log.add)
		done <- err
	}()

	<-adv.started
	cancel()

	var err error
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.ErrorIs(t, err, context.Canceled)

	n := len(log.all())
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, log.all(), n, "no status after return")
	assert.Empty(t, f.publisher.published)
	assert.Empty(t, f.archive.stored)
	assert.Equal(t, 1, f.metrics.scans["cancelled"])
}

func TestNarratorStopIsIdempotent(t *testing.T) {
	var log statusLog
	n := startNarrator(models.TrendNeutral, time.Millisecond, log.add)
	n.Stop()
	n.Stop()
	assert.Equal(t, "Market trend is Neutral. Analyzing pairs...", log.all()[0])
}
