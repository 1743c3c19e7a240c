package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditPruneJobName is the name of the audit log retention job
const AuditPruneJobName = "audit_prune"

// DefaultPruneTimeout bounds a single prune run.
const DefaultPruneTimeout = 5 * time.Minute

// AuditPruner removes audit rows older than a retention window.
type AuditPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditPruneJob periodically deletes audit rows past the configured
// retention, keeping the table bounded on long-running installs.
type AuditPruneJob struct {
	audits    AuditPruner
	logger    *zap.Logger
	retention time.Duration
	timeout   time.Duration
}

// NewAuditPruneJob creates a new audit prune job.
func NewAuditPruneJob(audits AuditPruner, logger *zap.Logger, retention, timeout time.Duration) *AuditPruneJob {
	if timeout <= 0 {
		timeout = DefaultPruneTimeout
	}
	return &AuditPruneJob{
		audits:    audits,
		logger:    logger,
		retention: retention,
		timeout:   timeout,
	}
}

// Run executes one prune pass.
func (j *AuditPruneJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	removed, err := j.audits.Prune(ctx, j.retention)
	if err != nil {
		j.logger.Error("audit prune failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}

	j.logger.Info("audit logs pruned",
		zap.Int64("removed", removed),
		zap.Duration("retention", j.retention),
		zap.Duration("elapsed", time.Since(start)))
}
