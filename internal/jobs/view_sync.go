package jobs

import (
	"context"
	"log/slog"
)

type ViewFlusher interface {
	Flush(ctx context.Context) (int, error)
}

// ViewSyncJob persists post view counts buffered in redis.
type ViewSyncJob struct {
	views ViewFlusher
	log   *slog.Logger
}

func NewViewSyncJob(views ViewFlusher, log *slog.Logger) *ViewSyncJob {
	return &ViewSyncJob{views: views, log: log}
}

func (j *ViewSyncJob) Name() string     { return "view-sync" }
func (j *ViewSyncJob) Schedule() string { return "@every 1m" }

func (j *ViewSyncJob) Run(ctx context.Context) error {
	n, err := j.views.Flush(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.Debug("synced post views", "posts", n)
	}
	return nil
}
