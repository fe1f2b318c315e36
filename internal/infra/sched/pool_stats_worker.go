package sched

import (
	"context"
	"time"

	"autos-admin/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// PoolStats is a snapshot of connection pool usage.
type PoolStats struct {
	Total, Idle, InUse, Max int32
	Acquired                int64
}

type StatSource interface {
	PoolStats() PoolStats
}

// StatSourceFunc adapts a plain function, e.g. a closure over pgxpool.Pool.Stat.
type StatSourceFunc func() PoolStats

func (f StatSourceFunc) PoolStats() PoolStats { return f() }

// PoolStatsWorker periodically publishes pool statistics as gauges.
type PoolStatsWorker struct {
	interval time.Duration
	src      StatSource
	log      *zerolog.Logger
}

func NewPoolStatsWorker(interval time.Duration, src StatSource, logger *zerolog.Logger) *PoolStatsWorker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	wlog := logger.With().Str("component", "PoolStatsWorker").Logger()
	return &PoolStatsWorker{
		interval: interval,
		src:      src,
		log:      &wlog,
	}
}

func (w *PoolStatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting pool stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.publish()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping pool stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.publish()
		}
	}
}

func (w *PoolStatsWorker) publish() {
	s := w.src.PoolStats()
	metrics.SetDBPoolStats(s.Total, s.Idle, s.InUse, s.Max, s.Acquired)
	if s.Max > 0 && s.InUse == s.Max {
		w.log.Warn().Int32("in_use", s.InUse).Msg("db pool saturated")
	}
}
