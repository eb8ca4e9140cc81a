// Package scheduler runs background tasks on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic work. now is the trigger time.
type Task func(ctx context.Context, now time.Time) error

// Config controls a PeriodicTrigger
type Config struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Defaults to the interval.
	Timeout time.Duration
	// RunOnStart runs the task once right after Start
	RunOnStart bool
}

// RunStats counts the runs of a trigger
type RunStats struct {
	Runs     int64
	Failures int64
	LastRun  time.Time
	LastErr  string
}

// PeriodicTrigger calls a task every interval until stopped. Runs never
// overlap; a tick that fires while a run is in progress is skipped.
type PeriodicTrigger struct {
	config Config
	task   Task
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	busy      atomic.Bool

	statsMu sync.Mutex
	stats   RunStats
}

// NewPeriodicTrigger validates the config and creates a trigger
func NewPeriodicTrigger(config Config, task Task, logger *zap.Logger) (*PeriodicTrigger, error) {
	if task == nil || config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval %v", ErrInvalidConfig, config.Interval)
	}
	if config.Timeout <= 0 {
		config.Timeout = config.Interval
	}
	if config.Name == "" {
		config.Name = "task"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodicTrigger{
		config: config,
		task:   task,
		logger: logger.With(zap.String("task", config.Name)),
		now:    time.Now,
	}, nil
}

// Start launches the ticker loop. Calling Start twice is a no-op.
func (p *PeriodicTrigger) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.Info("Periodic task started",
		zap.Duration("interval", p.config.Interval),
		zap.Bool("run_on_start", p.config.RunOnStart),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run until ctx is done
func (p *PeriodicTrigger) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Periodic task stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("Periodic task stop timed out")
		return ctx.Err()
	}
}

// RunNow runs the task synchronously outside the schedule
func (p *PeriodicTrigger) RunNow(ctx context.Context) error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.busy.Store(false)
	return p.run(ctx)
}

// Stats returns a snapshot of the run counters
func (p *PeriodicTrigger) Stats() RunStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

func (p *PeriodicTrigger) loop(ctx context.Context) {
	defer p.wg.Done()

	if p.config.RunOnStart {
		p.tick(ctx)
	}

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *PeriodicTrigger) tick(ctx context.Context) {
	if !p.busy.CompareAndSwap(false, true) {
		p.logger.Debug("Previous run still in progress, skipping tick")
		return
	}
	defer p.busy.Store(false)
	_ = p.run(ctx)
}

func (p *PeriodicTrigger) run(ctx context.Context) (err error) {
	now := p.now()
	runCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
		p.record(now, err)
	}()

	return p.task(runCtx, now)
}

func (p *PeriodicTrigger) record(at time.Time, err error) {
	p.statsMu.Lock()
	p.stats.Runs++
	p.stats.LastRun = at
	p.stats.LastErr = ""
	if err != nil {
		p.stats.Failures++
		p.stats.LastErr = err.Error()
	}
	p.statsMu.Unlock()

	if err != nil {
		p.logger.Error("Periodic task failed", zap.Error(err))
		return
	}
	p.logger.Debug("Periodic task finished", zap.Duration("elapsed", p.now().Sub(at)))
}
