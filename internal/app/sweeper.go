package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type FineRecomputer interface {
	RecomputeFines(ctx context.Context) (int, error)
}

// FineSweeper refreshes the stored fine of every active borrow record on a
// fixed interval, so overdue fines follow the calendar.
type FineSweeper struct {
	fines    FineRecomputer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewFineSweeper(fines FineRecomputer, interval time.Duration, logger *zap.Logger) *FineSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FineSweeper{
		fines:    fines,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately, then one per interval, until Stop or
// ctx is cancelled.
func (s *FineSweeper) Start(ctx context.Context) {
	s.logger.Info("starting fine sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop blocks until the sweep loop has exited. Start must have been called.
func (s *FineSweeper) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping fine sweeper")
		close(s.stopChan)
	})
	<-s.done
}

func (s *FineSweeper) run(ctx context.Context) {
	defer close(s.done)
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			s.logger.Info("fine sweeper cancelled")
			return
		}
	}
}

func (s *FineSweeper) sweep(ctx context.Context) {
	start := time.Now()
	n, err := s.fines.RecomputeFines(ctx)
	if err != nil {
		s.logger.Error("fine sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("fine sweep completed", zap.Int("updated", n), zap.Duration("took", time.Since(start)))
}
