package scheduler

import (
	"context"
	"time"

	pipelinesvc "beleads_backend/internal/pipeline/service"
	"beleads_backend/platform/logger"
)

const (
	defaultRecycleSweepInterval = time.Hour
	defaultRecycleSweepBatch    = 200
)

// Sweeper restores due lost leads across all subscribers.
type Sweeper interface {
	SweepAll(ctx context.Context, batch int) (pipelinesvc.SweepResult, error)
}

// RecycleSweeper periodically runs the pipeline recycler outside page loads.
type RecycleSweeper struct {
	sweeper  Sweeper
	log      *logger.Logger
	interval time.Duration
	batch    int
}

func NewRecycleSweeper(sweeper Sweeper, log *logger.Logger, interval time.Duration, batch int) *RecycleSweeper {
	if interval <= 0 {
		interval = defaultRecycleSweepInterval
	}
	if batch <= 0 {
		batch = defaultRecycleSweepBatch
	}

	return &RecycleSweeper{
		sweeper:  sweeper,
		log:      log,
		interval: interval,
		batch:    batch,
	}
}

func (s *RecycleSweeper) Run(ctx context.Context) {
	if s == nil || s.sweeper == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *RecycleSweeper) sweep(ctx context.Context) {
	if _, err := s.sweeper.SweepAll(ctx, s.batch); err != nil && ctx.Err() == nil {
		s.log.Warn("pipeline recycle sweep failed", "error", err)
	}
}
