package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	log     *slog.Logger
	timeout time.Duration
}

func NewScheduler(log *slog.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		jobs:    make([]Job, 0),
		log:     log.With("component", "scheduler"),
		timeout: timeout,
	}
}

func (s *Scheduler) Register(job Job) error {
	spec := job.Schedule()
	if spec == "" {
		s.jobs = append(s.jobs, job)
		s.log.Info("job registered on-demand", "job", job.Name())
		return nil
	}

	if _, err := s.cron.AddFunc(spec, func() { _ = s.execute(context.Background(), job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.jobs = append(s.jobs, job)
	s.log.Info("job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := job.Run(ctx)
	attrs := []any{"job", job.Name(), "duration_ms", time.Since(start).Milliseconds()}
	if err != nil {
		s.log.Error("job failed", append(attrs, "error", err)...)
		return err
	}
	s.log.Info("job completed", attrs...)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}

// RunByName runs a job immediately, e.g. from an admin trigger.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return s.execute(ctx, job)
		}
	}
	return fmt.Errorf("job %q not found", name)
}

func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
