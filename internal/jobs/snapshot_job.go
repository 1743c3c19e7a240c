package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BalanceSnapshotJobName is the name of the stock balance snapshot job
const BalanceSnapshotJobName = "balance_snapshot"

// DefaultSnapshotTimeout bounds a single snapshot refresh run.
const DefaultSnapshotTimeout = 2 * time.Minute

// SnapshotService refreshes stock balance snapshots.
type SnapshotService interface {
	// RebuildSnapshots recomputes all stock balances from the ledger and
	// replaces the persisted snapshot rows. Returns the number of rows written.
	RebuildSnapshots(ctx context.Context) (int, error)
}

// BalanceSnapshotJob periodically recomputes stock balances from the
// transaction ledger and persists them as snapshot rows, so dashboard and
// reporting reads do not have to replay the full ledger.
type BalanceSnapshotJob struct {
	stocks  SnapshotService
	logger  *zap.Logger
	timeout time.Duration
}

// NewBalanceSnapshotJob creates a new balance snapshot job.
// The timeout controls how long a single refresh is allowed to run.
func NewBalanceSnapshotJob(stocks SnapshotService, logger *zap.Logger, timeout time.Duration) *BalanceSnapshotJob {
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}
	return &BalanceSnapshotJob{
		stocks:  stocks,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one snapshot refresh.
func (j *BalanceSnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	rows, err := j.stocks.RebuildSnapshots(ctx)
	if err != nil {
		j.logger.Error("balance snapshot refresh failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}

	j.logger.Info("balance snapshot refreshed",
		zap.Int("rows", rows),
		zap.Duration("elapsed", time.Since(start)))
}
