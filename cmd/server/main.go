package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	grpcapi "accreditation-backend/internal/api/grpc"
	httpapi "accreditation-backend/internal/api/http"
	"accreditation-backend/internal/bootstrap"
	"accreditation-backend/internal/config"
	"accreditation-backend/internal/jobs"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository/firestore"
	"accreditation-backend/internal/scheduler"
	"accreditation-backend/internal/security"
	"accreditation-backend/internal/service"
	"accreditation-backend/internal/trigger"
)

const watchConcurrency = 4

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	withScheduler := flag.Bool("with-scheduler", false, "Run the cron jobs inside the server process")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Accreditation Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "trigger_mode", cfg.Trigger.Mode)
	logger.Info("Email configuration", "provider", cfg.Email.Provider, "sender", cfg.Email.SenderEmail)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase
	app, err := bootstrap.NewFirebaseApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize firebase: %v", err)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("Failed to create firestore client: %v", err)
	}
	defer fsClient.Close()
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to create auth client: %v", err)
	}

	// Initialize Repositories
	store := firestore.NewStore(fsClient, cfg.Trigger.Collection)
	db, ledger, err := bootstrap.OpenDispatchLog(cfg)
	if err != nil {
		log.Fatalf("Failed to open dispatch ledger: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize Storage Service
	artifacts, mockStorage, err := bootstrap.NewArtifactStore(ctx, cfg, app)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize Services
	emailSvc, err := bootstrap.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	pipeline := bootstrap.NewPipeline(cfg, store, artifacts, emailSvc, ledger)
	handler := trigger.NewHandler(pipeline)
	reviewSvc := service.NewReviewService(store.AccessRequestRepository)

	// Initialize Security
	deps := httpapi.RouterDeps{
		Sessions: security.NewFirebaseSessionVerifier(authClient),
		Reviews:  reviewSvc,
	}
	if cfg.PushEnabled() {
		deps.Tokens = security.NewTokenManager(cfg.Trigger.PushTokenSecret)
		deps.Trigger = handler
	}
	if mockStorage != nil {
		deps.Artifacts = mockStorage
	}

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var health *grpcapi.Server
	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			log.Fatalf("Failed to listen: %v", err)
		}
		health = grpcapi.NewServer()
		g.Go(func() error { return health.Serve(lis) })
	}

	if cfg.WatchEnabled() {
		watcher := trigger.NewWatcher(store.AccessRequestFeed, handler, watchConcurrency)
		g.Go(func() error {
			logger.Info("Watching access requests", "collection", cfg.Trigger.Collection)
			if err := watcher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	var cron *scheduler.Scheduler
	if *withScheduler {
		cron = scheduler.NewScheduler(jobs.NewJobRunner(store.AccessRequestRepository, ledger, emailSvc, cfg))
		cron.Start()
	}

	if health != nil {
		health.SetServing(true)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		if health != nil {
			health.SetServing(false)
			health.Stop()
		}
		if cron != nil {
			cron.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
