// Package gemini wraps the Google GenAI client for the two external
// model calls the pipeline makes: question embedding and answer
// completion.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// VectorDimension is the embedding dimensionality, matching the
// vector(768) column of source_embeddings. gemini-embedding-001 outputs
// 3072 dimensions by default and truncates via OutputDimensionality.
const VectorDimension int32 = 768

// Config configures the Gemini client.
type Config struct {
	APIKey        string
	Model         string // completion model, e.g. "gemini-2.5-flash"
	EmbedderModel string // e.g. "gemini-embedding-001"
	MaxTokens     int
}

// Client calls the Gemini API for embeddings and completions.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	client      *genai.Client
	model       string
	embedModel  string
	maxTokens   int
	retryConfig RetryConfig
	logger      *slog.Logger
}

// New creates a Client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing genai client: %w", err)
	}

	return &Client{
		client:      client,
		model:       cfg.Model,
		embedModel:  cfg.EmbedderModel,
		maxTokens:   cfg.MaxTokens,
		retryConfig: DefaultRetryConfig(),
		logger:      logger,
	}, nil
}

// Embed generates the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text must not be empty")
	}

	dim := VectorDimension
	result, err := c.client.Models.EmbedContent(ctx, c.embedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &dim},
	)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	values := result.Embeddings[0].Values
	if int32(len(values)) != dim {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", dim, len(values))
	}
	return values, nil
}

// Complete generates a completion for the given system instruction and
// prompt. Transient failures are retried once with backoff; any error
// after that is returned to the caller, which treats it as fatal to the
// turn.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.2)),
		MaxOutputTokens: int32(c.maxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.generateWithRetry(ctx, contents, cfg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					b.WriteString(part.Text)
				}
			}
			if b.Len() > 0 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no response generated from completion model")
	}
	return b.String(), nil
}
