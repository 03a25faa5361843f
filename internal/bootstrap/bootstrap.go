// Package bootstrap builds the shared runtime dependencies of the binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"accreditation-backend/internal/config"
	"accreditation-backend/internal/credential"
	"accreditation-backend/internal/email"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
	"accreditation-backend/internal/repository/firestore"
	"accreditation-backend/internal/repository/postgres"
	"accreditation-backend/internal/service"
	"accreditation-backend/internal/storage"
	"accreditation-backend/internal/utils"
)

// NewFirebaseApp initialises the Admin SDK. An empty credentials file
// falls back to application default credentials.
func NewFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Firebase.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	logger.Info("Firebase app initialized", "project", cfg.Firebase.ProjectID)
	return app, nil
}

// NewArtifactStore selects the credential storage backend. The mock store
// is returned separately so its download route can be mounted.
func NewArtifactStore(ctx context.Context, cfg *config.Config, app *firebase.App) (storage.ArtifactStore, *storage.MockStorageService, error) {
	switch cfg.Storage.Type {
	case "mock":
		logger.Info("Using mock storage (local filesystem)", "upload_dir", cfg.Storage.UploadDir)
		mock, err := storage.NewMockStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return mock, mock, nil
	case "gcs":
		client, err := app.Storage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		bucket, err := client.Bucket(cfg.Firebase.StorageBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bucket %s: %w", cfg.Firebase.StorageBucket, err)
		}
		logger.Info("Using Firebase Storage", "bucket", cfg.Firebase.StorageBucket)
		return storage.NewGCSStore(bucket, cfg.Firebase.StorageBucket), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
}

// NewEmailService builds the provider sender and the templated service on top.
func NewEmailService(cfg *config.Config) (service.EmailService, error) {
	sender, err := email.New(cfg.Email, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := sender.Validate(); err != nil {
		logger.Warn("Email provider is not usable, every notification will fail until fixed", "provider", sender.Name(), "error", err)
	}
	from := email.Address{Email: cfg.Email.SenderEmail, Name: cfg.Email.SenderName}
	return service.NewEmailService(sender, from, cfg.Credential.SystemName, utils.LoadLocation(cfg.Credential.Timezone)), nil
}

func NewRenderer(cfg *config.Config) *credential.Renderer {
	return credential.NewRenderer(credential.Options{
		SystemName: cfg.Credential.SystemName,
		Title:      cfg.Credential.Title,
		Subtitle:   cfg.Credential.Subtitle,
		Location:   utils.LoadLocation(cfg.Credential.Timezone),
		QRSize:     cfg.Credential.QRSize,
		Compress:   cfg.CompressCredentials(),
	})
}

// OpenDispatchLog connects and migrates the Postgres dispatch ledger. It
// returns nil values when the database is disabled.
func OpenDispatchLog(cfg *config.Config) (*sql.DB, repository.DispatchLogRepository, error) {
	if !cfg.Database.Enabled {
		logger.Info("Dispatch ledger disabled, duplicate deliveries are not suppressed")
		return nil, nil, nil
	}
	logger.Debug("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := postgres.Open(cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(db, cfg.Database.Database); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connection established")
	return db, postgres.NewStore(db).DispatchLogRepository, nil
}

// NewPipeline assembles the credential pipeline over the Firestore store
func NewPipeline(cfg *config.Config, store *firestore.Store, artifacts storage.ArtifactStore, emails service.EmailService, ledger repository.DispatchLogRepository) service.CredentialPipeline {
	var opts []service.PipelineOption
	if ledger != nil {
		opts = append(opts, service.WithDispatchLog(ledger))
	}
	return service.NewCredentialPipeline(
		store.AccessRequestRepository,
		store.MatchdayRepository,
		store.ReferenceRepository,
		NewRenderer(cfg),
		service.NewArtifactService(artifacts, cfg.Storage.PathPrefix),
		emails,
		opts...,
	)
}
