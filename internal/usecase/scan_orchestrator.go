package usecase

import (
	"context"
	"sync"
	"time"

	"PerpScout/internal/domain/models"
	drepo "PerpScout/internal/domain/repository"
	domsvc "PerpScout/internal/domain/service"
	applogger "PerpScout/pkg/logger"

	"github.com/google/uuid"
)

// StatusFunc receives progress text while a cycle runs.
type StatusFunc func(status string)

type OrchestratorOption func(*ScanOrchestrator)

// WithScanPublisher sends every successful cycle to an event bus.
func WithScanPublisher(p drepo.ScanPublisher) OrchestratorOption {
	return func(o *ScanOrchestrator) { o.publisher = p }
}

// WithScanArchive stores every successful cycle for history queries.
func WithScanArchive(a drepo.ScanArchive) OrchestratorOption {
	return func(o *ScanOrchestrator) { o.archive = a }
}

func WithStatusInterval(d time.Duration) OrchestratorOption {
	return func(o *ScanOrchestrator) {
		if d > 0 {
			o.statusInterval = d
		}
	}
}

func WithOrchestratorLogger(l *applogger.Logger) OrchestratorOption {
	return func(o *ScanOrchestrator) { o.logger = l }
}

func WithRunIDs(next func() string) OrchestratorOption {
	return func(o *ScanOrchestrator) { o.newRunID = next }
}

// ScanOrchestrator runs one analysis cycle end to end.
type ScanOrchestrator struct {
	screener  domsvc.MarketScreener
	sentiment domsvc.SentimentAggregator
	corpus    models.SnippetCorpus
	advisor   domsvc.Advisor
	synth     domsvc.RecommendationSynthesizer
	metrics   drepo.Metrics

	publisher drepo.ScanPublisher
	archive   drepo.ScanArchive

	statusInterval time.Duration
	newRunID       func() string
	logger         *applogger.Logger

	mu     sync.RWMutex
	status string
}

func NewScanOrchestrator(
	screener domsvc.MarketScreener,
	sentiment domsvc.SentimentAggregator,
	corpus models.SnippetCorpus,
	advisor domsvc.Advisor,
	synth domsvc.RecommendationSynthesizer,
	metrics drepo.Metrics,
	opts ...OrchestratorOption,
) *ScanOrchestrator {
	o := &ScanOrchestrator{
		screener:       screener,
		sentiment:      sentiment,
		corpus:         corpus,
		advisor:        advisor,
		synth:          synth,
		metrics:        metrics,
		statusInterval: 1500 * time.Millisecond,
		newRunID:       uuid.NewString,
		logger:         applogger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Status returns the latest narration, empty when idle.
func (o *ScanOrchestrator) Status() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// Run executes one cycle. A cancelled ctx yields ctx.Err() and no side effects.
func (o *ScanOrchestrator) Run(ctx context.Context, onStatus StatusFunc) (*models.ScanResult, error) {
	started := time.Now()
	runID := o.newRunID()
	log := o.logger

	defer o.setStatus(nil, "")
	o.setStatus(onStatus, statusFetching)

	snap, sentiment, err := o.gather(ctx)
	if err != nil {
		return nil, o.fail(ctx, runID, started, "screener", err)
	}
	o.metrics.RecordCandidates(len(snap.Candidates))
	for _, s := range sentiment {
		o.metrics.RecordSentiment(s.Asset, s.Score)
	}

	narrator := startNarrator(snap.Trend, o.statusInterval, func(s string) { o.setStatus(onStatus, s) })
	recs, err := o.recommend(ctx, runID, snap)
	narrator.Stop()
	if err != nil {
		return nil, o.fail(ctx, runID, started, "advisor", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, o.fail(ctx, runID, started, "advisor", err)
	}

	result := &models.ScanResult{
		RunID:           runID,
		StartedAt:       started,
		FinishedAt:      time.Now(),
		Snapshot:        *snap,
		Sentiment:       sentiment,
		Recommendations: recs,
	}
	o.metrics.RecordRecommendations(len(recs))
	o.metrics.RecordScan("success", time.Since(started).Seconds())
	o.sink(ctx, result)

	log.Info("scan completed",
		applogger.String("run_id", runID),
		applogger.String("trend", string(snap.Trend)),
		applogger.Int("candidates", len(snap.Candidates)),
		applogger.Int("recommendations", len(recs)),
		applogger.Duration("duration_ms", time.Since(started)),
	)
	return result, nil
}

// gather runs the screener and the sentiment aggregator side by side.
func (o *ScanOrchestrator) gather(ctx context.Context) (*models.MarketSnapshot, []models.SentimentResult, error) {
	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap, err := o.screener.Screen(ctx)
		ch <- item{"market", snap, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch <- item{"sentiment", o.sentiment.Aggregate(o.corpus), nil}
	}()

	go func() { wg.Wait(); close(ch) }()

	var (
		snap      *models.MarketSnapshot
		sentiment []models.SentimentResult
		err       error
	)
	for it := range ch {
		switch it.name {
		case "market":
			if it.err != nil {
				err = it.err
				continue
			}
			snap = it.val.(*models.MarketSnapshot)
		case "sentiment":
			sentiment = it.val.([]models.SentimentResult)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, nil, cerr
	}
	return snap, sentiment, nil
}

func (o *ScanOrchestrator) recommend(ctx context.Context, runID string, snap *models.MarketSnapshot) ([]models.TradeRecommendation, error) {
	if len(snap.Candidates) == 0 {
		o.logger.Info("no candidates passed screening, advisor skipped", applogger.String("run_id", runID))
		return []models.TradeRecommendation{}, nil
	}

	start := time.Now()
	picks, err := o.advisor.Advise(ctx, snap.Candidates, snap.Trend)
	o.metrics.RecordLatency("advisor", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	recs, dropped := o.synth.Synthesize(runID, picks, snap.Candidates)
	for _, d := range dropped {
		o.logger.Warn("pick dropped", applogger.String("run_id", runID), applogger.Error(d))
		o.metrics.RecordError("malformed_pick")
	}
	return recs, nil
}

func (o *ScanOrchestrator) fail(ctx context.Context, runID string, started time.Time, stage string, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		o.metrics.RecordScan("cancelled", time.Since(started).Seconds())
		o.logger.Info("scan cancelled", applogger.String("run_id", runID), applogger.Error(cerr))
		return cerr
	}
	o.metrics.RecordScan("failed", time.Since(started).Seconds())
	o.metrics.RecordError(stage)
	o.logger.Error("scan failed",
		applogger.String("run_id", runID),
		applogger.String("stage", stage),
		applogger.Error(err),
	)
	return err
}

// sink delivers a result to the optional bus and archive. Failures are logged only.
func (o *ScanOrchestrator) sink(ctx context.Context, r *models.ScanResult) {
	if o.publisher != nil {
		if err := o.publisher.PublishScan(ctx, r); err != nil {
			o.metrics.RecordError("scan_publish")
			o.logger.Warn("scan event not published", applogger.String("run_id", r.RunID), applogger.Error(err))
		}
	}
	if o.archive != nil {
		if err := o.archive.StoreScan(ctx, r); err != nil {
			o.metrics.RecordError("scan_archive")
			o.logger.Warn("scan not archived", applogger.String("run_id", r.RunID), applogger.Error(err))
		}
	}
}

func (o *ScanOrchestrator) setStatus(onStatus StatusFunc, s string) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
	if onStatus != nil {
		onStatus(s)
	}
}
