// Package scheduler triggers weather update batches on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"weathersub.app/internal/core/dispatch"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

type BatchRunner interface {
	RunBatch(ctx context.Context, frequency subscription.Frequency) dispatch.BatchResult
}

type CronSchedulerDependencies struct {
	Runner     BatchRunner
	Logger     ports.Logger
	HourlySpec string
	DailySpec  string
}

// LastRun describes the most recent batch of one cadence
type LastRun struct {
	At     time.Time
	Result dispatch.BatchResult
}

// ErrBatchRunning is returned by RunNow when a batch of the same cadence is
// already in progress.
var ErrBatchRunning = errors.NewAlreadyExistsError("batch already running")

// CronScheduler runs the hourly and daily batches independently. At most one
// batch per cadence runs at a time, whether it was fired by cron or by RunNow:
// a scheduled fire that finds its cadence busy is skipped, and a panicking
// batch is logged without stopping the runner.
type CronScheduler struct {
	runner  BatchRunner
	logger  ports.Logger
	specs   map[subscription.Frequency]string
	running map[subscription.Frequency]*atomic.Bool

	cron  *cron.Cron
	chain cron.Chain

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	entries  []cron.EntryID
	lastRuns map[subscription.Frequency]LastRun
}

func NewCronScheduler(deps CronSchedulerDependencies) (*CronScheduler, error) {
	if deps.Runner == nil {
		return nil, errors.NewValidationError("batch runner is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	specs := map[subscription.Frequency]string{
		subscription.FrequencyHourly: deps.HourlySpec,
		subscription.FrequencyDaily:  deps.DailySpec,
	}
	for freq, spec := range specs {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, errors.NewConfigurationError(fmt.Sprintf("invalid %s schedule %q", freq, spec), err)
		}
	}

	running := make(map[subscription.Frequency]*atomic.Bool, len(specs))
	for freq := range specs {
		running[freq] = new(atomic.Bool)
	}

	logger := cronLogger{logger: deps.Logger}
	return &CronScheduler{
		runner:   deps.Runner,
		logger:   deps.Logger,
		specs:    specs,
		running:  running,
		cron:     cron.New(cron.WithLogger(logger)),
		chain:    cron.NewChain(cron.Recover(logger)),
		lastRuns: make(map[subscription.Frequency]LastRun),
	}, nil
}

// Start registers both cadences and starts the cron runner. Batches run
// with a context derived from ctx that is cancelled by Stop.
func (s *CronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	jobCtx, cancel := context.WithCancel(ctx)
	for _, freq := range subscription.Frequencies() {
		id, err := s.cron.AddJob(s.specs[freq], s.jobFor(jobCtx, freq))
		if err != nil {
			cancel()
			s.removeEntries()
			return errors.NewConfigurationError(fmt.Sprintf("schedule %s batch", freq), err)
		}
		s.entries = append(s.entries, id)
	}

	s.cancel = cancel
	s.started = true
	s.cron.Start()

	s.logger.Info("Batch scheduler started",
		ports.F("hourlySpec", s.specs[subscription.FrequencyHourly]),
		ports.F("dailySpec", s.specs[subscription.FrequencyDaily]))
	return nil
}

// Stop halts scheduling and waits for running batches. If ctx expires first
// the running batches are cancelled and ctx's error is returned.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.removeEntries()
	s.mu.Unlock()

	done := s.cron.Stop()
	defer cancel()

	select {
	case <-done.Done():
		s.logger.Info("Batch scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Batch scheduler stop timed out, cancelling running batches")
		return fmt.Errorf("wait for running batches: %w", ctx.Err())
	}
}

// RunNow runs one batch synchronously, outside the cron schedule. It fails
// with ErrBatchRunning instead of overlapping a batch of the same cadence.
func (s *CronScheduler) RunNow(ctx context.Context, frequency subscription.Frequency) (dispatch.BatchResult, error) {
	if !frequency.IsValid() {
		return dispatch.BatchResult{}, errors.NewValidationError("invalid frequency")
	}

	result, ok := s.run(ctx, frequency)
	if !ok {
		return dispatch.BatchResult{}, fmt.Errorf("%s: %w", frequency, ErrBatchRunning)
	}
	return result, nil
}

func (s *CronScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *CronScheduler) LastRun(frequency subscription.Frequency) (LastRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.lastRuns[frequency]
	return run, ok
}

// removeEntries must be called with s.mu held.
func (s *CronScheduler) removeEntries() {
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = nil
}

func (s *CronScheduler) jobFor(ctx context.Context, frequency subscription.Frequency) cron.Job {
	return s.chain.Then(cron.FuncJob(func() {
		if _, ok := s.run(ctx, frequency); !ok {
			s.logger.Warn("Skipping scheduled batch, previous one still running",
				ports.F("frequency", frequency.String()))
		}
	}))
}

// run executes one batch unless the cadence is busy. The guard is released
// even when the batch panics.
func (s *CronScheduler) run(ctx context.Context, frequency subscription.Frequency) (dispatch.BatchResult, bool) {
	guard := s.running[frequency]
	if !guard.CompareAndSwap(false, true) {
		return dispatch.BatchResult{}, false
	}
	defer guard.Store(false)

	result := s.runner.RunBatch(ctx, frequency)

	s.mu.Lock()
	s.lastRuns[frequency] = LastRun{At: time.Now(), Result: result}
	s.mu.Unlock()

	return result, true
}
