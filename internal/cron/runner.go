package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cartloom/cartloom-backend/pkg/config"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/metrics"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Locker serializes job execution across worker replicas.
type Locker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	LockKey(name string) string
}

// Runner executes registered jobs on a fixed interval. Each run takes a
// per-job Redis lock so only one worker replica executes a given job in
// a window.
type Runner struct {
	jobs    []Job
	locker  Locker
	metrics *metrics.CronJobMetrics
	cfg     config.CronConfig
	logg    *logger.Logger
}

func NewRunner(locker Locker, m *metrics.CronJobMetrics, cfg config.CronConfig, logg *logger.Logger) (*Runner, error) {
	if locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("cron interval must be positive, got %s", cfg.Interval)
	}
	return &Runner{
		locker:  locker,
		metrics: m,
		cfg:     cfg,
		logg:    logg,
	}, nil
}

// Register adds a job to the schedule.
func (r *Runner) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Run blocks, executing all jobs immediately and then on every tick,
// until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes every registered job once, skipping jobs whose lock
// is held elsewhere. Job failures are logged and counted, never fatal.
func (r *Runner) RunOnce(ctx context.Context) {
	for _, job := range r.jobs {
		r.runJob(ctx, job)
	}
}

func (r *Runner) runJob(ctx context.Context, job Job) {
	name := job.Name()

	acquired, err := r.locker.SetNX(ctx, r.locker.LockKey(name), time.Now().UTC().Format(time.RFC3339), r.cfg.LockTTL)
	if err != nil {
		r.logg.Error(ctx, fmt.Sprintf("acquiring lock for job %s", name), err)
		r.metrics.IncFailure(name)
		return
	}
	if !acquired {
		r.logg.Info(ctx, fmt.Sprintf("job %s locked by another worker, skipping", name))
		return
	}

	start := time.Now()
	err = job.Run(ctx)
	r.metrics.ObserveDuration(name, time.Since(start))
	if err != nil {
		r.metrics.IncFailure(name)
		r.logg.Error(ctx, fmt.Sprintf("job %s failed", name), err)
		return
	}
	r.metrics.IncSuccess(name)
	r.logg.Info(ctx, fmt.Sprintf("job %s completed in %s", name, time.Since(start).Round(time.Millisecond)))
}
