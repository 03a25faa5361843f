package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"accreditation-backend/internal/jobs"
	"accreditation-backend/internal/logger"
)

// Scheduler runs the maintenance jobs on their cron expressions (UTC,
// seconds precision).
type Scheduler struct {
	cron    *cron.Cron
	jobs    *jobs.JobRunner
	running atomic.Bool
}

type scheduledJob struct {
	name string
	spec string
	run  func()
}

func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		jobs: jobRunner,
	}
	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	table := []scheduledJob{
		{name: "SendFailureDigest", spec: cfg.SendFailureDigest, run: s.jobs.SendFailureDigest},
	}
	if s.jobs.HasDispatchLog() {
		table = append(table, scheduledJob{name: "PurgeDispatchLog", spec: cfg.PurgeDispatchLog, run: s.jobs.PurgeDispatchLog})
	}

	for _, j := range table {
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			logger.Error("Failed to register job", "job", j.name, "schedule", j.spec, "error", err)
			continue
		}
		logger.Debug("Registered job", "job", j.name, "schedule", j.spec)
	}
	logger.Info("Cron jobs registered", "count", s.Entries())
}

// Start is a no-op when already running
func (s *Scheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.cron.Start()
	logger.Info("Cron scheduler started")
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	logger.Info("Stopping cron scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning reports whether Start was called without a matching Stop
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// Entries is the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
