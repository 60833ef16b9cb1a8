package config

import "fmt"

// Validate checks the configuration for out-of-range or missing values.
// It returns the first violation found, wrapped with the offending value
// so startup errors are actionable.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}
	if c.MaxTokens < 1 || c.MaxTokens > 65536 {
		return fmt.Errorf("%w: max_tokens %d out of range [1, 65536]", ErrInvalidMaxTokens, c.MaxTokens)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold %g out of range [0, 1]", ErrInvalidThreshold, c.SimilarityThreshold)
	}
	if c.SourceLimit < 1 || c.SourceLimit > MaxSourceLimit {
		return fmt.Errorf("%w: source_limit %d out of range [1, %d]", ErrInvalidSourceLimit, c.SourceLimit, MaxSourceLimit)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: postgres_host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: postgres_port %d out of range [1, 65535]", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: postgres_db_name must not be empty", ErrInvalidPostgresDBName)
	}
	return nil
}

// ValidateAPIKey checks that GEMINI_API_KEY is present. Split from
// Validate so commands that never touch the model (migrations) can load
// config without a key.
func (c *Config) ValidateAPIKey() error {
	if GeminiAPIKey() == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrMissingAPIKey)
	}
	return nil
}
