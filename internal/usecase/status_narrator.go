package usecase

import (
	"fmt"
	"sync"
	"time"

	"PerpScout/internal/domain/models"
)

const statusFetching = "Fetching live market data from Binance..."

func narration(trend models.Trend) []string {
	return []string{
		fmt.Sprintf("Market trend is %s. Analyzing pairs...", trend),
		"Filtering coins by volume and volatility...",
		"Screening for stable funding rates...",
		"Identifying top 5 candidates...",
		"Engaging AI for deep analysis...",
		"Compiling top 3 recommendations...",
		"Finalizing grid strategies...",
	}
}

// statusNarrator rotates progress messages while the advisor works.
// Stop is idempotent and returns only after the last emit.
type statusNarrator struct {
	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

func startNarrator(trend models.Trend, interval time.Duration, emit func(string)) *statusNarrator {
	n := &statusNarrator{stopCh: make(chan struct{}), done: make(chan struct{})}
	msgs := narration(trend)
	emit(msgs[0])

	go func() {
		defer close(n.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for i := 1; ; i++ {
			select {
			case <-n.stopCh:
				return
			case <-t.C:
				select {
				case <-n.stopCh:
					return
				default:
				}
				emit(msgs[i%len(msgs)])
			}
		}
	}()
	return n
}

func (n *statusNarrator) Stop() {
	n.once.Do(func() { close(n.stopCh) })
	<-n.done
}
