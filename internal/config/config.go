// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (NOOR_* overrides, DATABASE_URL)
//  2. Config file (~/.noor/config.yaml or ./config.yaml)
//  3. Default values
//
// Sensitive values (the Postgres password, GEMINI_API_KEY) are never
// logged. Validation runs immediately after loading so the process
// fails fast on a broken configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates GEMINI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the completion model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model name is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidThreshold indicates the similarity threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid similarity threshold")

	// ErrInvalidSourceLimit indicates the source limit is out of range.
	ErrInvalidSourceLimit = errors.New("invalid source limit")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

const (
	// DefaultModel is the default Gemini completion model.
	DefaultModel = "gemini-2.5-flash"

	// DefaultEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 outputs 3072 dimensions by default but supports
	// truncation to 768 via OutputDimensionality; the source_embeddings
	// schema uses vector(768).
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultSimilarityThreshold is the minimum cosine similarity for a
	// semantic hit to count as relevant.
	DefaultSimilarityThreshold = 0.5

	// DefaultSourceLimit is the default number of sources per answer.
	DefaultSourceLimit = 5

	// MaxSourceLimit bounds the per-answer source count.
	MaxSourceLimit = 20
)

// Config stores application configuration.
type Config struct {
	// Gemini model configuration
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`
	MaxTokens     int    `mapstructure:"max_tokens"`

	// Retrieval configuration
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	SourceLimit         int     `mapstructure:"source_limit"`

	// HTTP server configuration
	ServerAddr string `mapstructure:"server_addr"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".noor")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL has the highest priority for PostgreSQL settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("max_tokens", 2048)

	v.SetDefault("similarity_threshold", DefaultSimilarityThreshold)
	v.SetDefault("source_limit", DefaultSourceLimit)

	v.SetDefault("server_addr", "127.0.0.1:8080")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "noor")
	v.SetDefault("postgres_password", "noor_dev_password")
	v.SetDefault("postgres_db_name", "noor")
	v.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment overrides explicitly.
// GEMINI_API_KEY is read directly by the genai client, not via Viper;
// its presence is checked in Validate.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "NOOR_MODEL_NAME")
	mustBind("embedder_model", "NOOR_EMBEDDER_MODEL")
	mustBind("server_addr", "NOOR_SERVER_ADDR")
	mustBind("source_limit", "NOOR_SOURCE_LIMIT")
	mustBind("postgres_host", "NOOR_POSTGRES_HOST")
	mustBind("postgres_port", "NOOR_POSTGRES_PORT")
	mustBind("postgres_user", "NOOR_POSTGRES_USER")
	mustBind("postgres_password", "NOOR_POSTGRES_PASSWORD")
	mustBind("postgres_db_name", "NOOR_POSTGRES_DB_NAME")
	mustBind("postgres_ssl_mode", "NOOR_POSTGRES_SSL_MODE")
}

// GeminiAPIKey returns the Gemini API key from the environment.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}
