package jobs

import (
	"context"

	"accreditation-backend/internal/logger"
)

const digestLimit = 200

// SendFailureDigest emails administrators the requests whose notification
// could not be delivered
func (jr *JobRunner) SendFailureDigest() {
	jr.runWithRecovery("SendFailureDigest", func() {
		ctx := context.Background()

		recipients := jr.config.Notification.AdminRecipients
		if len(recipients) == 0 {
			logger.Warn("No admin recipients configured, skipping failure digest")
			return
		}

		failures, err := jr.requests.ListEmailFailures(ctx, digestLimit)
		if err != nil {
			logger.Error("Failed to list email failures", "error", err)
			return
		}
		if len(failures) == 0 {
			logger.Info("No email failures to report")
			return
		}

		if err := jr.emails.SendFailureDigest(ctx, recipients, failures, jr.now()); err != nil {
			logger.Error("Failed to send failure digest", "failures", len(failures), "error", err)
			return
		}
		logger.Info("Failure digest sent", "failures", len(failures), "recipients", len(recipients))
	})
}
