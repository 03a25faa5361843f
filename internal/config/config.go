package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	GRPC         GRPCConfig         `yaml:"grpc"`
	Firebase     FirebaseConfig     `yaml:"firebase"`
	Storage      StorageConfig      `yaml:"storage"`
	Email        EmailConfig        `yaml:"email"`
	Database     DatabaseConfig     `yaml:"database"`
	Trigger      TriggerConfig      `yaml:"trigger"`
	Credential   CredentialConfig   `yaml:"credential"`
	Notification NotificationConfig `yaml:"notification"`
	Log          LogConfig          `yaml:"log"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GRPCConfig contains the health-check server settings
type GRPCConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// FirebaseConfig selects the Firebase project backing Firestore, Storage and Auth
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"` // empty uses application default credentials
	StorageBucket   string `yaml:"storage_bucket"`
}

// StorageConfig contains credential artifact storage settings
type StorageConfig struct {
	Type       string `yaml:"type"`        // "gcs" or "mock"
	UploadDir  string `yaml:"upload_dir"`  // For mock storage
	BaseURL    string `yaml:"base_url"`    // Server base URL for mock URLs
	PathPrefix string `yaml:"path_prefix"` // Root folder for generated credentials
}

// EmailConfig contains transactional email settings
type EmailConfig struct {
	Provider    string     `yaml:"provider"` // "brevo", "sendgrid" or "smtp"
	APIKey      string     `yaml:"api_key"`
	BaseURL     string     `yaml:"base_url"`
	SenderEmail string     `yaml:"sender_email"`
	SenderName  string     `yaml:"sender_name"`
	SMTP        SMTPConfig `yaml:"smtp"`
}

// SMTPConfig contains relay settings for the smtp provider
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DatabaseConfig contains PostgreSQL settings for the dispatch ledger
type DatabaseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"database"`
	SSLMode       string `yaml:"ssl_mode"`
	RetentionDays int    `yaml:"retention_days"`
}

// TriggerConfig selects how access request changes reach the pipeline
type TriggerConfig struct {
	Mode            string `yaml:"mode"` // "push", "watch" or "both"
	PushTokenSecret string `yaml:"push_token_secret"`
	Collection      string `yaml:"collection"`
}

// CredentialConfig contains document rendering settings
type CredentialConfig struct {
	SystemName string `yaml:"system_name"`
	Title      string `yaml:"title"`
	Subtitle   string `yaml:"subtitle"`
	Timezone   string `yaml:"timezone"`
	QRSize     int    `yaml:"qr_size_px"`
	Compress   *bool  `yaml:"compress"`
}

// NotificationConfig contains settings for administrator-facing mail
type NotificationConfig struct {
	AdminRecipients []string `yaml:"admin_recipients"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SendFailureDigest string `yaml:"send_failure_digest"`
	PurgeDispatchLog  string `yaml:"purge_dispatch_log"`
}

const (
	TriggerModePush  = "push"
	TriggerModeWatch = "watch"
	TriggerModeBoth  = "both"
)

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a validated configuration from YAML bytes and the environment
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.GRPC.Port)
	}

	// Firebase
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Firebase.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" && c.Firebase.CredentialsFile == "" {
		c.Firebase.CredentialsFile = val
	}
	if val := os.Getenv("FIREBASE_STORAGE_BUCKET"); val != "" {
		c.Firebase.StorageBucket = val
	}

	// Storage
	if val := os.Getenv("STORAGE_TYPE"); val != "" {
		c.Storage.Type = val
	}
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Email
	if val := os.Getenv("EMAIL_PROVIDER"); val != "" {
		c.Email.Provider = val
	}
	if val := os.Getenv("EMAIL_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Email.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Email.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Email.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Email.SMTP.Password = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Trigger
	if val := os.Getenv("TRIGGER_MODE"); val != "" {
		c.Trigger.Mode = val
	}
	if val := os.Getenv("PUSH_TOKEN_SECRET"); val != "" {
		c.Trigger.PushTokenSecret = val
	}

	// Notification
	if val := os.Getenv("ADMIN_RECIPIENTS"); val != "" {
		c.Notification.AdminRecipients = splitList(val)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Enabled {
		if c.GRPC.Port == 0 {
			c.GRPC.Port = c.Server.Port + 1
		}
		if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 || c.GRPC.Port == c.Server.Port {
			return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
		}
	}

	// Firebase validation
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase project id is required")
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = "mock"
	}
	switch c.Storage.Type {
	case "mock":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required for mock storage")
		}
		if c.Storage.BaseURL == "" {
			c.Storage.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
		}
	case "gcs":
		if c.Firebase.StorageBucket == "" {
			return fmt.Errorf("firebase storage bucket is required for gcs storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.PathPrefix == "" {
		c.Storage.PathPrefix = "accreditations"
	}

	// Email validation. A missing API key is not a startup error: every
	// pipeline run checks it and records the failure on the request.
	if c.Email.Provider == "" {
		c.Email.Provider = "brevo"
	}
	switch c.Email.Provider {
	case "brevo", "sendgrid":
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required for smtp provider")
		}
		if c.Email.SMTP.Port <= 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTP.Port)
		}
	default:
		return fmt.Errorf("unsupported email provider: %s", c.Email.Provider)
	}
	if c.Email.SenderEmail == "" {
		return fmt.Errorf("email sender address is required")
	}
	if c.Email.SenderName == "" {
		c.Email.SenderName = "Acreditaciones Estadio"
	}

	// Database validation
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.RetentionDays == 0 {
			c.Database.RetentionDays = 90
		}
	}

	// Trigger validation
	if c.Trigger.Mode == "" {
		c.Trigger.Mode = TriggerModePush
	}
	switch c.Trigger.Mode {
	case TriggerModePush, TriggerModeBoth:
		if len(c.Trigger.PushTokenSecret) < 32 {
			return fmt.Errorf("push token secret must be at least 32 characters")
		}
	case TriggerModeWatch:
	default:
		return fmt.Errorf("unsupported trigger mode: %s", c.Trigger.Mode)
	}
	if c.Trigger.Collection == "" {
		c.Trigger.Collection = "accessRequests"
	}

	// Credential defaults
	if c.Credential.SystemName == "" {
		c.Credential.SystemName = "Sistema de Acreditaciones"
	}
	if c.Credential.Title == "" {
		c.Credential.Title = "ACREDITACIÓN DE ACCESO"
	}
	if c.Credential.Subtitle == "" {
		c.Credential.Subtitle = "Credencial personal e intransferible"
	}
	if c.Credential.Timezone == "" {
		c.Credential.Timezone = "America/Mexico_City"
	}
	if c.Credential.QRSize == 0 {
		c.Credential.QRSize = 300
	}
	if c.Credential.QRSize < 64 {
		return fmt.Errorf("qr size must be at least 64 pixels: %d", c.Credential.QRSize)
	}

	// Scheduler defaults
	if c.Scheduler.SendFailureDigest == "" {
		c.Scheduler.SendFailureDigest = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.PurgeDispatchLog == "" {
		c.Scheduler.PurgeDispatchLog = "0 30 3 * * *" // 3:30 AM UTC
	}

	return nil
}

// CompressCredentials reports whether rendered PDFs use stream compression
func (c *Config) CompressCredentials() bool {
	return c.Credential.Compress == nil || *c.Credential.Compress
}

// PushEnabled reports whether the HTTP event endpoint is mounted
func (c *Config) PushEnabled() bool {
	return c.Trigger.Mode == TriggerModePush || c.Trigger.Mode == TriggerModeBoth
}

// WatchEnabled reports whether the Firestore listener runs
func (c *Config) WatchEnabled() bool {
	return c.Trigger.Mode == TriggerModeWatch || c.Trigger.Mode == TriggerModeBoth
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health server address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.GRPC.Port)
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
