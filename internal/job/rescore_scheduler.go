// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"feed-ranking-service/internal/app/service"
	"feed-ranking-service/pkg/locker"
)

// RescoreScheduler periodically refreshes persisted post scores with
// distributed locking so only one instance runs a rescore pass at a time.
//
// Feeds always score candidates fresh; the persisted column only drives the
// candidate-pool ordering, so a late pass degrades candidate selection, never
// correctness.
type RescoreScheduler struct {
	rescoreService *service.RescoreService
	interval       time.Duration
	timeout        time.Duration
	onStartup      bool
	logger         *zap.Logger
	locker         locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RescoreConfig holds rescore scheduler configuration.
type RescoreConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewRescoreScheduler creates a new RescoreScheduler with distributed locking
// support.
func NewRescoreScheduler(
	rescoreSvc *service.RescoreService,
	cfg RescoreConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *RescoreScheduler {
	return &RescoreScheduler{
		rescoreService: rescoreSvc,
		interval:       cfg.Interval,
		timeout:        cfg.Timeout,
		onStartup:      cfg.OnStartup,
		logger:         logger,
		locker:         locker,
	}
}

// Start begins the background rescore job.
func (s *RescoreScheduler) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting rescore scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", s.onStartup),
	)

	s.wg.Add(1)
	go s.run()
}

// Stop gracefully stops the scheduler.
func (s *RescoreScheduler) Stop() {
	s.logger.Info("stopping rescore scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("rescore scheduler stopped")
}

// run is the main loop of the scheduler.
func (s *RescoreScheduler) run() {
	defer s.wg.Done()

	// Run immediately if configured
	if s.onStartup {
		s.executeRescore()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeRescore()
		}
	}
}

// executeRescore performs a rescore pass with distributed locking and timeout.
//
// Locking behavior:
//   - Lock TTL = interval duration (cooldown model, not timeout)
//   - Success: Lock held for full interval to prevent duplicate passes
//   - Failure: Lock released immediately to allow retry by another instance
func (s *RescoreScheduler) executeRescore() {
	const lockKey = "rescore:scheduler:lock"

	// Try to acquire lock with interval-based TTL (cooldown model)
	acquired, err := s.locker.Acquire(s.ctx, lockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))

		return
	}
	if !acquired {
		s.logger.Debug("another instance is running the rescore pass, skipping execution")

		return
	}

	// Lock acquired - run the pass with timeout
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	result, err := s.rescoreService.RescoreRecent(ctx)
	if err != nil {
		// Release lock immediately on error (allow immediate retry)
		if relErr := s.locker.Release(s.ctx, lockKey); relErr != nil {
			s.logger.Error("failed to release lock after rescore error", zap.Error(relErr))
		}
		s.logger.Warn("rescore pass failed, lock released for retry", zap.Error(err))

		return
	}

	// Lock will expire naturally after interval (cooldown period)
	s.logger.Info("rescore pass completed, lock held for cooldown",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
		zap.Duration("took", result.Duration),
		zap.Duration("cooldown", s.interval),
	)
}
