package usecase

import (
	"context"
	"testing"
	"time"

	"PerpScout/internal/domain/models"
	"PerpScout/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanServiceRejectsOverlappingCycles(t *testing.T) {
	adv := &fakeAdvisor{block: true, started: make(chan struct{}, 1)}
	f := newOrchestratorFixture(snapshot(models.TrendBullish, sol), adv)
	kv := cache.NewMemoryCache()
	defer kv.Close()
	svc := NewScanService(f.orch, kv, time.Minute, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Scan(ctx, nil)
		done <- err
	}()
	<-adv.started
	assert.True(t, svc.InFlight())

	_, err := svc.Scan(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrScanInFlight)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, svc.InFlight())

	locked, err := kv.Exists(context.Background(), scanLockKey)
	require.NoError(t, err)
	assert.False(t, locked, "lock released after the cycle")
}

func TestScanServiceHonoursRemoteLock(t *testing.T) {
	f := newOrchestratorFixture(snapshot(models.TrendBullish, sol), &fakeAdvisor{})
	kv := cache.NewMemoryCache()
	defer kv.Close()
	ok, err := kv.TryLock(context.Background(), scanLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	svc := NewScanService(f.orch, kv, time.Minute, 0, nil)
	_, err = svc.Scan(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrScanInFlight)
	assert.Zero(t, f.screener.calls)
}

func TestScanServiceKeepsLatest(t *testing.T) {
	adv := &fakeAdvisor{picks: []models.AnalystPick{{Pair: "SOLUSDT", Recommendation: models.DirectionLong}}}
	f := newOrchestratorFixture(snapshot(models.TrendBullish, sol), adv)
	svc := NewScanService(f.orch, nil, 0, time.Minute, nil)

	assert.Nil(t, svc.Latest())
	res, err := svc.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Same(t, res, svc.Latest())

	f.screener.err = &models.DataFetchError{Feed: "ticker24h"}
	_, err = svc.Scan(context.Background(), nil)
	require.Error(t, err)
	assert.Same(t, res, svc.Latest(), "failed cycles keep the previous result")
}
