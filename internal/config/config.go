package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Supported persistence backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Store   StoreConfig
	MongoDB MongoDBConfig
	AI      AIConfig
	Images  ImageConfig
	Export  ExportConfig
	Sheets  SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Host string
	Port string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// StoreConfig selects where the cellar is persisted.
type StoreConfig struct {
	Kind       string
	SQLitePath string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for the label analysis provider.
type AIConfig struct {
	AnthropicKey string
	Model        string
	Timeout      time.Duration
}

// ImageConfig holds settings for fetching preferred web images.
type ImageConfig struct {
	FetchTimeout time.Duration
}

// ExportConfig holds scheduled snapshot settings. An empty CronSchedule
// disables the scheduler.
type ExportConfig struct {
	Dir          string
	CronSchedule string
	Timezone     string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets mirror is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	analysisTimeout, err := getDurationWithDefault("ANALYSIS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := getDurationWithDefault("IMAGE_FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getenvWithDefault("APP_HOST", "127.0.0.1"),
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Kind:       strings.ToLower(getenvWithDefault("CELLAR_STORE", StoreSQLite)),
			SQLitePath: getenvWithDefault("CELLAR_SQLITE_PATH", "cellar.db"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "cellar"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:        getenvWithDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			Timeout:      analysisTimeout,
		},
		Images: ImageConfig{
			FetchTimeout: fetchTimeout,
		},
		Export: ExportConfig{
			Dir:          getenvWithDefault("EXPORT_DIR", "exports"),
			CronSchedule: os.Getenv("EXPORT_CRON_SCHEDULE"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Santiago"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
// A missing ANTHROPIC_API_KEY is not an error: scans fail at analysis time instead.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Kind {
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("CELLAR_SQLITE_PATH must be provided")
		}
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when CELLAR_STORE=mongo")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unsupported CELLAR_STORE %q", c.Store.Kind)
	}

	if c.AI.Timeout <= 0 {
		return errors.New("ANALYSIS_TIMEOUT must be positive")
	}
	if c.Images.FetchTimeout <= 0 {
		return errors.New("IMAGE_FETCH_TIMEOUT must be positive")
	}

	if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Export.Timezone, err)
	}

	if c.Export.CronSchedule != "" {
		if c.Export.Dir == "" {
			return errors.New("EXPORT_DIR must be provided when EXPORT_CRON_SCHEDULE is set")
		}
		if _, err := cron.ParseStandard(c.Export.CronSchedule); err != nil {
			return fmt.Errorf("invalid EXPORT_CRON_SCHEDULE %q: %w", c.Export.CronSchedule, err)
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
