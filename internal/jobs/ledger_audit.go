package jobs

import (
	"context"
	"log/slog"

	pointsDto "anoa.com/campusforum/internal/modules/points/dto"
)

type DriftAuditor interface {
	AuditDrift(ctx context.Context) ([]pointsDto.DriftEntry, error)
}

// LedgerAuditJob reports profiles whose balance disagrees with the sum of
// their point records. It never corrects anything.
type LedgerAuditJob struct {
	auditor DriftAuditor
	log     *slog.Logger
}

func NewLedgerAuditJob(auditor DriftAuditor, log *slog.Logger) *LedgerAuditJob {
	return &LedgerAuditJob{auditor: auditor, log: log}
}

func (j *LedgerAuditJob) Name() string     { return "ledger-audit" }
func (j *LedgerAuditJob) Schedule() string { return "@daily" }

func (j *LedgerAuditJob) Run(ctx context.Context) error {
	drift, err := j.auditor.AuditDrift(ctx)
	if err != nil {
		return err
	}
	for _, d := range drift {
		j.log.Warn("points ledger drift",
			"user_id", d.UserID,
			"total_points", d.TotalPoints,
			"ledger_sum", d.LedgerSum,
		)
	}
	j.log.Info("ledger audit finished", "mismatches", len(drift))
	return nil
}
