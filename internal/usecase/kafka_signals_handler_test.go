package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"PerpScout/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanEventPayload(t *testing.T, recs ...models.TradeRecommendation) []byte {
	t.Helper()
	b, err := json.Marshal(models.NewScanEvent(&models.ScanResult{RunID: "run-9", Recommendations: recs}))
	require.NoError(t, err)
	return b
}

func TestKafkaSignalsHandlerForwardsRecommendations(t *testing.T) {
	ctx := context.Background()
	n := &fakeNotifier{}
	m := newRecordingMetrics()
	d := newDispatcher(t, n, m)
	require.NoError(t, d.SaveSettings(ctx, models.NotifierSettings{Token: "t", ChatID: "42"}))
	h := NewKafkaSignalsHandler("perpscout.scans", d, true, m, nil)

	assert.Equal(t, "perpscout.scans", h.Topic())
	require.NoError(t, h.Handle(ctx, scanEventPayload(t, longRec("A-run-9"), longRec("B-run-9"))))
	assert.Len(t, n.texts, 2)
}

func TestKafkaSignalsHandlerIgnoresWhenDisabled(t *testing.T) {
	n := &fakeNotifier{}
	m := newRecordingMetrics()
	h := NewKafkaSignalsHandler("perpscout.scans", newDispatcher(t, n, m), false, m, nil)

	require.NoError(t, h.Handle(context.Background(), scanEventPayload(t, longRec("A-run-9"))))
	require.NoError(t, h.Handle(context.Background(), []byte(`{"type":"other"}`)))
	assert.Empty(t, n.texts)
}

func TestKafkaSignalsHandlerToleratesDeliveryProblems(t *testing.T) {
	ctx := context.Background()
	n := &fakeNotifier{err: errors.New("bot blocked")}
	m := newRecordingMetrics()
	d := newDispatcher(t, n, m)
	h := NewKafkaSignalsHandler("perpscout.scans", d, true, m, nil)

	require.NoError(t, h.Handle(ctx, scanEventPayload(t, longRec("A-run-9"))), "unconfigured notifier")
	assert.Empty(t, n.texts)

	require.NoError(t, d.SaveSettings(ctx, models.NotifierSettings{Token: "t", ChatID: "42"}))
	require.NoError(t, h.Handle(ctx, scanEventPayload(t, longRec("A-run-9"))))
	assert.Equal(t, 1, m.errors["auto_notify"])
}

func TestKafkaSignalsHandlerRejectsGarbage(t *testing.T) {
	m := newRecordingMetrics()
	h := NewKafkaSignalsHandler("perpscout.scans", newDispatcher(t, &fakeNotifier{}, m), true, m, nil)
	assert.Error(t, h.Handle(context.Background(), []byte("{not json")))
	assert.Equal(t, 1, m.errors["consumer_unmarshal"])
}
