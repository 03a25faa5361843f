package jobs

import (
	"time"

	"accreditation-backend/internal/config"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
	"accreditation-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	requests repository.AccessRequestRepository
	ledger   repository.DispatchLogRepository
	emails   service.EmailService
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner. ledger may be nil when the
// dispatch ledger is disabled.
func NewJobRunner(requests repository.AccessRequestRepository, ledger repository.DispatchLogRepository, emails service.EmailService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		requests: requests,
		ledger:   ledger,
		emails:   emails,
		config:   cfg,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// HasDispatchLog reports whether ledger maintenance jobs apply
func (jr *JobRunner) HasDispatchLog() bool {
	return jr.ledger != nil
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.SendFailureDigest()
	if jr.HasDispatchLog() {
		jr.PurgeDispatchLog()
	}
}
