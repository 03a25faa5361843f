package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"accreditation-backend/internal/bootstrap"
	"accreditation-backend/internal/config"
	"accreditation-backend/internal/jobs"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository/firestore"
	"accreditation-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-failure-digest', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Accreditation Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()
	app, err := bootstrap.NewFirebaseApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize firebase: %v", err)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("Failed to create firestore client: %v", err)
	}
	defer fsClient.Close()

	// Initialize Repositories
	store := firestore.NewStore(fsClient, cfg.Trigger.Collection)
	db, ledger, err := bootstrap.OpenDispatchLog(cfg)
	if err != nil {
		log.Fatalf("Failed to open dispatch ledger: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize Services
	emailSvc, err := bootstrap.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.AccessRequestRepository, ledger, emailSvc, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "jobs", cronScheduler.Entries())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "send-failure-digest":
		jobRunner.SendFailureDigest()
	case "purge-dispatch-log":
		if !jobRunner.HasDispatchLog() {
			logger.Error("Dispatch ledger is disabled", "job", jobName)
			return false
		}
		jobRunner.PurgeDispatchLog()
	case "all":
		jobRunner.RunAllJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-failure-digest\n")
		fmt.Printf("  - purge-dispatch-log\n")
		fmt.Printf("  - all\n")
		return false
	}
	return true
}
