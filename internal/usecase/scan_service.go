package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"PerpScout/internal/domain/models"
	drepo "PerpScout/internal/domain/repository"
	applogger "PerpScout/pkg/logger"
)

const scanLockKey = "scan:inflight"

// ScanService serializes cycles and remembers the latest successful result.
type ScanService struct {
	orch    *ScanOrchestrator
	locker  drepo.Locker
	lockTTL time.Duration
	timeout time.Duration
	logger  *applogger.Logger

	inflight atomic.Bool

	mu     sync.RWMutex
	latest *models.ScanResult
}

// NewScanService accepts a nil locker; the in-process guard still applies.
func NewScanService(orch *ScanOrchestrator, locker drepo.Locker, lockTTL, timeout time.Duration, l *applogger.Logger) *ScanService {
	if l == nil {
		l = applogger.Nop()
	}
	return &ScanService{orch: orch, locker: locker, lockTTL: lockTTL, timeout: timeout, logger: l}
}

// Scan runs one cycle unless another one is in flight here or on another replica.
func (s *ScanService) Scan(ctx context.Context, onStatus StatusFunc) (*models.ScanResult, error) {
	if !s.inflight.CompareAndSwap(false, true) {
		return nil, models.ErrScanInFlight
	}
	defer s.inflight.Store(false)

	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, scanLockKey, s.lockTTL)
		switch {
		case err != nil:
			s.logger.Warn("scan lock unavailable, continuing with local guard", applogger.Error(err))
		case !ok:
			return nil, models.ErrScanInFlight
		default:
			defer func() {
				if err := s.locker.Unlock(context.Background(), scanLockKey); err != nil {
					s.logger.Warn("scan lock release failed", applogger.Error(err))
				}
			}()
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.orch.Run(ctx, onStatus)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()
	return res, nil
}

// Latest returns the last successful result or nil.
func (s *ScanService) Latest() *models.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *ScanService) InFlight() bool { return s.inflight.Load() }

func (s *ScanService) Status() string { return s.orch.Status() }
