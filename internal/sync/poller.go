package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"
)

// fetchTimeout is the maximum time allowed for a single refresh.
const fetchTimeout = 30 * time.Second

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 60 * time.Second

// RefreshFunc performs one poll cycle. It should log its own failures;
// the poller never retries early.
type RefreshFunc func(ctx context.Context)

// Poller calls a refresh function on a fixed interval. At most one timer
// goroutine runs at a time; Start and Stop are idempotent and the poller
// can be restarted after Stop.
type Poller struct {
	refresh  RefreshFunc
	interval time.Duration
	logger   *slog.Logger

	mu      gosync.Mutex
	running bool
	stopCh  chan struct{}
	ticks   int
}

// New creates a Poller. A non-positive interval means DefaultInterval.
func New(refresh RefreshFunc, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		refresh:  refresh,
		interval: interval,
		logger:   logger.With(slog.String("component", "poller")),
	}
}

// Start begins polling. The first refresh happens one interval from now;
// callers that need data immediately refresh themselves. Returns false if
// the poller was already running.
func (p *Poller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return false
	}
	p.running = true
	p.stopCh = make(chan struct{})

	go p.loop(p.stopCh)

	p.logger.Info("polling started", slog.Duration("interval", p.interval))
	return true
}

// Stop halts polling. Returns false if the poller was not running. Stop
// does not wait for an in-flight refresh to finish.
func (p *Poller) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return false
	}
	close(p.stopCh)
	p.running = false

	p.logger.Info("polling stopped")
	return true
}

// Running reports whether the poll timer is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Ticks returns how many refresh cycles have run since creation.
func (p *Poller) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}

// Interval returns the polling period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// loop runs the ticker until stop is closed.
func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.tick(stop)
		}
	}
}

// tick performs one refresh bounded by fetchTimeout. The refresh is
// cancelled if the poller is stopped mid-flight.
func (p *Poller) tick(stop <-chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	p.mu.Lock()
	p.ticks++
	p.mu.Unlock()

	p.refresh(ctx)
}
