package usecase

import (
	"context"
	"sync"
	"time"

	"PerpScout/internal/domain/models"
)

type fakeScreener struct {
	snap  *models.MarketSnapshot
	err   error
	calls int
}

func (f *fakeScreener) Screen(ctx context.Context) (*models.MarketSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

type fakeAggregator struct {
	results []models.SentimentResult
}

func (f *fakeAggregator) Aggregate(models.SnippetCorpus) []models.SentimentResult {
	return f.results
}

type fakeAdvisor struct {
	mu      sync.Mutex
	picks   []models.AnalystPick
	err     error
	delay   time.Duration
	block   bool
	started chan struct{}
	calls   int
}

func (f *fakeAdvisor) Advise(ctx context.Context, _ []models.Candidate, _ models.Trend) ([]models.AnalystPick, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.block {
		<-ctx.Done()
		return nil, &models.AdvisoryError{Err: ctx.Err()}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.picks, f.err
}

func (f *fakeAdvisor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingMetrics struct {
	mu     sync.Mutex
	scans  map[string]int
	errors map[string]int
	notify map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{scans: map[string]int{}, errors: map[string]int{}, notify: map[string]int{}}
}

func (m *recordingMetrics) RecordScan(result string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[result]++
}
func (m *recordingMetrics) RecordCandidates(int) {}
func (m *recordingMetrics) RecordRecommendations(int) {}
func (m *recordingMetrics) RecordSentiment(string, float64) {}
func (m *recordingMetrics) RecordLatency(string, float64) {}
func (m *recordingMetrics) RecordNotification(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify[result]++
}
func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

type fakePublisher struct {
	published []*models.ScanResult
	err       error
}

func (f *fakePublisher) PublishScan(_ context.Context, r *models.ScanResult) error {
	f.published = append(f.published, r)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakeArchive struct {
	stored []*models.ScanResult
	err    error
}

func (f *fakeArchive) Init(context.Context) error { return nil }
func (f *fakeArchive) StoreScan(_ context.Context, r *models.ScanResult) error {
	f.stored = append(f.stored, r)
	return f.err
}
func (f *fakeArchive) RecentCandidates(context.Context, string, int) ([]models.ArchivedCandidate, error) {
	return nil, nil
}
func (f *fakeArchive) Close() error { return nil }

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, _ models.NotifierSettings, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.err
}

type fakePrices struct {
	price float64
	err   error
	calls int
}

func (f *fakePrices) LastPrice(context.Context, string) (float64, error) {
	f.calls++
	return f.price, f.err
}

// statusLog collects narration safely.
type statusLog struct {
	mu   sync.Mutex
	msgs []string
}

func (s *statusLog) add(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *statusLog) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

func snapshot(trend models.Trend, candidates ...models.Candidate) *models.MarketSnapshot {
	return &models.MarketSnapshot{Trend: trend, Candidates: candidates}
}
