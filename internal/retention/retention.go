// Package retention enforces artifact and temp-file lifetimes with a
// periodic background sweep.
package retention

import (
	"context"
	"time"

	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
)

const (
	// DefaultInterval is how often the sweep runs.
	DefaultInterval = time.Hour
	// sweepBatch bounds how many records one sweep pass touches per target.
	sweepBatch = 500
)

// Sweeper removes expired records for one retention target. Sweeps are
// idempotent: removing an already-removed record is a no-op.
type Sweeper interface {
	RemoveExpired(ctx context.Context, limit int) (int, error)
}

// Target pairs a sweeper with a name for logging.
type Target struct {
	Name    string
	Sweeper Sweeper
}

// Manager runs the retention sweep on a fixed interval.
type Manager struct {
	Targets  []Target
	Interval time.Duration
}

// NewManager constructs a Manager with the default hourly interval.
func NewManager(targets ...Target) *Manager {
	return &Manager{Targets: targets, Interval: DefaultInterval}
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.SweepOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass over every target. Failures are logged, not
// fatal; the next tick retries.
func (m *Manager) SweepOnce(ctx context.Context) int {
	total := 0
	for _, target := range m.Targets {
		removed, err := target.Sweeper.RemoveExpired(ctx, sweepBatch)
		total += removed
		if err != nil {
			telemetry.Error("retention sweep failed", map[string]any{
				"target":  target.Name,
				"removed": removed,
				"error":   err.Error(),
			})
			continue
		}
		if removed > 0 {
			telemetry.Info("retention sweep removed records", map[string]any{
				"target":  target.Name,
				"removed": removed,
			})
		}
	}
	metrics.AddSweepRemoved(total)
	return total
}
