package logging

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Progress throttling defaults.
const (
	DefaultPercentStep = 10
	DefaultMinInterval = 2 * time.Second
)

// ProgressLogger writes throttled progress entries: at most once per
// percent step and never more often than the minimum interval. Completion
// is always logged. Safe for concurrent use.
type ProgressLogger struct {
	log      zerolog.Logger
	step     int
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	lastPct int
	lastAt  time.Time
	done    bool
}

// NewProgressLogger returns a ProgressLogger with default throttling.
func NewProgressLogger(log zerolog.Logger) *ProgressLogger {
	return &ProgressLogger{
		log:      log,
		step:     DefaultPercentStep,
		interval: DefaultMinInterval,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (p *ProgressLogger) WithClock(now func() time.Time) *ProgressLogger {
	p.now = now
	return p
}

// Update records that completed of total units are resolved.
func (p *ProgressLogger) Update(completed, total int) {
	pct := 100
	if total > 0 {
		pct = min(max(completed*100/total, 0), 100)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	now := p.now()
	switch {
	case pct == 100:
		p.done = true
	case p.lastAt.IsZero():
		// first entry
	case pct/p.step == p.lastPct/p.step:
		return
	case now.Sub(p.lastAt) < p.interval:
		return
	}

	p.lastPct = pct
	p.lastAt = now
	p.log.Info().
		Int("percent", pct).
		Int("completed", completed).
		Int("total", total).
		Msg("progress")
}
