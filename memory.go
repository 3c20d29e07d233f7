package bench

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// MemoryTracker is an injected collaborator: the core never imports
// platform-specific memory-tracking code directly, it only toggles a
// tracker on and off around a measurement.
type MemoryTracker interface {
	Start()
	Stop()
	MaxRSS() uint64 // bytes
}

// noopMemoryTracker is used when neither --track-memory nor --tracemalloc
// is set.
type noopMemoryTracker struct{}

func (noopMemoryTracker) Start()         {}
func (noopMemoryTracker) Stop()          {}
func (noopMemoryTracker) MaxRSS() uint64 { return 0 }

// rssMemoryTracker samples the current process' resident set size from a
// background goroutine via gopsutil, so the sampling never perturbs the
// measurement clock. It never touches the measurement goroutine or its
// timer.
type rssMemoryTracker struct {
	interval time.Duration
	max      atomic.Uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

// newRSSMemoryTracker builds a tracker that samples this process' own RSS
// every interval.
func newRSSMemoryTracker(interval time.Duration) *rssMemoryTracker {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}

	return &rssMemoryTracker{interval: interval}
}

func (t *rssMemoryTracker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		close(t.done)
		return
	}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if info, err := proc.MemoryInfo(); err == nil {
					t.recordMax(info.RSS)
				}
			}
		}
	}()
}

func (t *rssMemoryTracker) recordMax(rss uint64) {
	for {
		cur := t.max.Load()
		if rss <= cur {
			return
		}
		if t.max.CompareAndSwap(cur, rss) {
			return
		}
	}
}

func (t *rssMemoryTracker) Stop() {
	if t.cancel != nil {
		t.cancel()
		<-t.done
	}
}

func (t *rssMemoryTracker) MaxRSS() uint64 {
	return t.max.Load()
}
