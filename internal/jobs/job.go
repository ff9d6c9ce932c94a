package jobs

import "context"

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	// Schedule is a robfig/cron spec. Empty means on-demand only.
	Schedule() string
	Run(ctx context.Context) error
}
