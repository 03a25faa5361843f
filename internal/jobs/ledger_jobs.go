package jobs

import (
	"context"
	"time"

	"accreditation-backend/internal/logger"
)

// PurgeDispatchLog removes ledger entries older than the retention window
func (jr *JobRunner) PurgeDispatchLog() {
	jr.runWithRecovery("PurgeDispatchLog", func() {
		if jr.ledger == nil {
			logger.Warn("Dispatch ledger disabled, nothing to purge")
			return
		}
		ctx := context.Background()

		days := jr.config.Database.RetentionDays
		if days <= 0 {
			days = 90
		}
		cutoff := jr.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

		n, err := jr.ledger.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge dispatch log", "cutoff", cutoff, "error", err)
			return
		}
		logger.Info("Dispatch log purged", "deleted", n, "cutoff", cutoff, "retention_days", days)
	})
}
