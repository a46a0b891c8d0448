package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"PerpScout/internal/domain/models"
	applogger "PerpScout/pkg/logger"
)

// Scanner runs a single guarded cycle.
type Scanner interface {
	Scan(ctx context.Context, onStatus StatusFunc) (*models.ScanResult, error)
}

type AutoScanStatus struct {
	Running          bool       `json:"running"`
	IntervalSeconds  int64      `json:"intervalSeconds"`
	NextRun          *time.Time `json:"nextRun,omitempty"`
	SecondsUntilNext int64      `json:"secondsUntilNext"`
	LastRunID        string     `json:"lastRunId,omitempty"`
	LastError        string     `json:"lastError,omitempty"`
}

// AutoScanner repeats cycles on a fixed interval and stops on the first failure.
type AutoScanner struct {
	scanner  Scanner
	interval time.Duration
	logger   *applogger.Logger
	now      func() time.Time

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	next      time.Time
	lastRunID string
	lastErr   string
}

func NewAutoScanner(scanner Scanner, interval time.Duration, l *applogger.Logger) *AutoScanner {
	if l == nil {
		l = applogger.Nop()
	}
	return &AutoScanner{scanner: scanner, interval: interval, logger: l, now: time.Now}
}

// Start runs a cycle right away and then every interval. The loop outlives ctx
// cancellation (an HTTP request, say) and ends only through Stop or a failure.
func (a *AutoScanner) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return models.ErrAutoScanRunning
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.running = true
	a.cancel = cancel
	a.done = make(chan struct{})
	a.lastErr = ""
	a.next = a.now()

	go a.loop(runCtx, a.done)
	a.logger.Info("auto-scan started", applogger.Duration("interval_ms", a.interval))
	return nil
}

// Stop cancels the loop and any cycle it is running. It reports whether a loop was active.
func (a *AutoScanner) Stop() bool {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return false
	}
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	cancel()
	<-done
	a.logger.Info("auto-scan stopped")
	return true
}

func (a *AutoScanner) Status() AutoScanStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := AutoScanStatus{
		Running:         a.running,
		IntervalSeconds: int64(a.interval / time.Second),
		LastRunID:       a.lastRunID,
		LastError:       a.lastErr,
	}
	if a.running {
		next := a.next
		st.NextRun = &next
		if d := next.Sub(a.now()); d > 0 {
			st.SecondsUntilNext = int64(d.Round(time.Second) / time.Second)
		}
	}
	return st
}

func (a *AutoScanner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		a.mu.Lock()
		a.running = false
		a.cancel()
		a.mu.Unlock()
	}()

	t := time.NewTicker(a.interval)
	defer t.Stop()

	for {
		if !a.tick(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// tick runs one cycle and reports whether the loop should continue.
func (a *AutoScanner) tick(ctx context.Context) bool {
	a.mu.Lock()
	a.next = a.now().Add(a.interval)
	a.mu.Unlock()

	res, err := a.scanner.Scan(ctx, nil)
	switch {
	case err == nil:
		a.mu.Lock()
		a.lastRunID = res.RunID
		a.mu.Unlock()
		return true
	case errors.Is(err, models.ErrScanInFlight):
		a.logger.Info("auto-scan tick skipped, scan in flight")
		return true
	case ctx.Err() != nil:
		return false
	default:
		a.mu.Lock()
		a.lastErr = models.FailureMessage(err)
		a.mu.Unlock()
		a.logger.Error("auto-scan stopped after failed cycle", applogger.Error(err))
		return false
	}
}
