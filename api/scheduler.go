/*
scheduler.go - Background flush of unpersisted rule changes

PURPOSE:
  A rule write whose storage failed stays applied in memory and marks its
  domain dirty. The flush scheduler periodically re-saves every dirty
  domain so the storage catches up once it recovers.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Each run calls Registry.FlushDirty; domains that still fail stay dirty
  - The outcome of the last run is kept for the admin endpoint
  - Stop performs one final flush so a clean shutdown loses nothing that
    the storage will accept

USAGE:
  scheduler := NewFlushScheduler(registry, 30*time.Second, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - rules/registry.go: FlushDirty
  - rules/store.go: Dirty, Flush
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/rules"
)

// FlushRun is the outcome of one flush pass.
type FlushRun struct {
	At      time.Time          `json:"at"`
	Pending []generic.DomainID `json:"pending"`
}

// FlushScheduler retries persistence of dirty rule domains.
type FlushScheduler struct {
	Registry      *rules.Registry
	CheckInterval time.Duration
	Enabled       bool

	// Timeout bounds one flush pass.
	Timeout time.Duration

	logger *zap.Logger

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastMu  sync.RWMutex
	lastRun *FlushRun
	nextRun time.Time
}

// NewFlushScheduler creates a scheduler. A non-positive interval disables it.
func NewFlushScheduler(reg *rules.Registry, interval time.Duration, logger *zap.Logger) *FlushScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlushScheduler{
		Registry:      reg,
		CheckInterval: interval,
		Enabled:       interval > 0,
		Timeout:       10 * time.Second,
		logger:        logger.Named("flush"),
	}
}

// Start begins the scheduler.
func (fs *FlushScheduler) Start() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.Enabled {
		fs.logger.Info("flush scheduler disabled, not starting")
		return
	}
	if fs.ticker != nil {
		return
	}

	fs.ticker = time.NewTicker(fs.CheckInterval)
	fs.setNextRun(time.Now().Add(fs.CheckInterval))
	fs.stop = make(chan struct{})
	fs.wg.Add(1)

	go fs.run()

	fs.logger.Info("flush scheduler started", zap.Duration("interval", fs.CheckInterval))
}

// Stop stops the scheduler and flushes once more.
func (fs *FlushScheduler) Stop() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.ticker == nil {
		return
	}
	fs.ticker.Stop()
	close(fs.stop)
	fs.wg.Wait()
	fs.ticker = nil
	fs.setNextRun(time.Time{})

	fs.RunNow()
	fs.logger.Info("flush scheduler stopped")
}

func (fs *FlushScheduler) run() {
	defer fs.wg.Done()

	for {
		select {
		case tick := <-fs.ticker.C:
			fs.setNextRun(tick.Add(fs.CheckInterval))
			fs.RunNow()
		case <-fs.stop:
			return
		}
	}
}

// RunNow flushes every dirty domain and records the outcome.
func (fs *FlushScheduler) RunNow() FlushRun {
	ctx, cancel := context.WithTimeout(context.Background(), fs.Timeout)
	defer cancel()

	pending := fs.Registry.FlushDirty(ctx)
	if pending == nil {
		pending = []generic.DomainID{}
	}
	run := FlushRun{At: time.Now(), Pending: pending}

	fs.lastMu.Lock()
	fs.lastRun = &run
	fs.lastMu.Unlock()

	if len(pending) > 0 {
		fs.logger.Warn("rule domains still unpersisted", zap.Int("count", len(pending)))
	}
	return run
}

// LastRun returns the latest flush outcome, or nil before the first run.
func (fs *FlushScheduler) LastRun() *FlushRun {
	fs.lastMu.RLock()
	defer fs.lastMu.RUnlock()
	if fs.lastRun == nil {
		return nil
	}
	run := *fs.lastRun
	return &run
}

// NextRun returns when the ticker fires next, or nil when the scheduler
// is not running.
func (fs *FlushScheduler) NextRun() *time.Time {
	fs.lastMu.RLock()
	defer fs.lastMu.RUnlock()
	if fs.nextRun.IsZero() {
		return nil
	}
	next := fs.nextRun
	return &next
}

func (fs *FlushScheduler) setNextRun(t time.Time) {
	fs.lastMu.Lock()
	fs.nextRun = t
	fs.lastMu.Unlock()
}

// =============================================================================
// HANDLERS
// =============================================================================

// FlushStatusDTO reports the scheduler state.
type FlushStatusDTO struct {
	Enabled bool               `json:"enabled"`
	Dirty   []generic.DomainID `json:"dirty"`
	LastRun *FlushRun          `json:"last_run"`
	NextRun *time.Time         `json:"next_run,omitempty"`
}

// GetFlushStatus lists dirty domains and the last flush.
// GET /api/admin/flush
func (h *Handler) GetFlushStatus(w http.ResponseWriter, r *http.Request) {
	dirty := []generic.DomainID{}
	for _, d := range h.Rules.All() {
		if d.Dirty() {
			dirty = append(dirty, d.ID())
		}
	}
	status := FlushStatusDTO{Dirty: dirty}
	if h.Flusher != nil {
		status.Enabled = h.Flusher.Enabled
		status.LastRun = h.Flusher.LastRun()
		status.NextRun = h.Flusher.NextRun()
	}
	writeJSON(w, http.StatusOK, status)
}

// TriggerFlush flushes dirty domains now.
// POST /api/admin/flush
func (h *Handler) TriggerFlush(w http.ResponseWriter, r *http.Request) {
	if h.Flusher != nil {
		writeJSON(w, http.StatusOK, h.Flusher.RunNow())
		return
	}
	pending := h.Rules.FlushDirty(r.Context())
	if pending == nil {
		pending = []generic.DomainID{}
	}
	writeJSON(w, http.StatusOK, FlushRun{At: time.Now(), Pending: pending})
}
