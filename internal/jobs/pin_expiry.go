package jobs

import (
	"context"
	"log/slog"
)

type PinExpirer interface {
	ExpirePins(ctx context.Context) (int64, error)
}

// PinExpiryJob unpins posts whose pin window has elapsed.
type PinExpiryJob struct {
	posts PinExpirer
	log   *slog.Logger
}

func NewPinExpiryJob(posts PinExpirer, log *slog.Logger) *PinExpiryJob {
	return &PinExpiryJob{posts: posts, log: log}
}

func (j *PinExpiryJob) Name() string     { return "pin-expiry" }
func (j *PinExpiryJob) Schedule() string { return "@hourly" }

func (j *PinExpiryJob) Run(ctx context.Context) error {
	n, err := j.posts.ExpirePins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.Info("expired pins", "count", n)
	}
	return nil
}
