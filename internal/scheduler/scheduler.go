// Package scheduler runs the periodic stage sweep.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/service"
	"github.com/noah-isme/sma-teamwork-api/pkg/config"
	"github.com/noah-isme/sma-teamwork-api/pkg/lock"
	"github.com/noah-isme/sma-teamwork-api/pkg/logger"
)

// Sweeper advances stages by wall clock.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// Scheduler triggers the sweep on a cron spec. Ticks overlapping a running
// sweep are skipped, and a lease keeps other replicas from sweeping at the
// same time.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	locker  lock.Locker
	cfg     config.SchedulerConfig
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the sweep job. It fails on an invalid spec.
func New(cfg config.SchedulerConfig, sweeper Sweeper, locker lock.Locker, l *zap.Logger) (*Scheduler, error) {
	if l == nil {
		l = zap.NewNop()
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "teamwork:stage-sweeper"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.Timeout <= 0 || cfg.Timeout > cfg.LockTTL {
		cfg.Timeout = cfg.LockTTL
	}

	cl := logger.CronLogger(l)
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		locker:  locker,
		cfg:     cfg,
		logger:  l.Named("scheduler"),
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := c.AddFunc(cfg.Spec, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("register stage sweep %q: %w", cfg.Spec, err)
	}
	return s, nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("stage sweep scheduled", zap.String("spec", s.cfg.Spec))
}

// Stop cancels a running sweep and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("stage sweep stopped")
}

func (s *Scheduler) tick() {
	if _, err := s.RunOnce(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("stage sweep failed", zap.Error(err))
	}
}

// RunOnce sweeps if the lease can be taken. ran is false when another holder
// owns it.
func (s *Scheduler) RunOnce(ctx context.Context) (ran bool, err error) {
	lease, ok, err := s.locker.Acquire(ctx, s.cfg.LockKey, s.cfg.LockTTL)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debug("stage sweep lease held elsewhere", zap.String("key", s.cfg.LockKey))
		return false, nil
	}
	defer func() {
		if releaseErr := lease.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			s.logger.Warn("failed to release stage sweep lease", zap.Error(releaseErr))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	result, err := s.sweeper.Sweep(runCtx)
	s.logger.Debug("stage sweep tick",
		zap.Int("activated", result.Activated),
		zap.Int("completed", result.Completed),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(start)))
	return true, err
}
