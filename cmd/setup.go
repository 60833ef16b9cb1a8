package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noorhq/noor/internal/assistant"
	"github.com/noorhq/noor/internal/config"
	"github.com/noorhq/noor/internal/conversation"
	"github.com/noorhq/noor/internal/database"
	"github.com/noorhq/noor/internal/gemini"
	"github.com/noorhq/noor/internal/guardrail"
	"github.com/noorhq/noor/internal/log"
	"github.com/noorhq/noor/internal/retrieval"
	"github.com/noorhq/noor/internal/synth"
)

// app holds the wired application components shared by serve and ask.
type app struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	store     *conversation.Store
	assistant *assistant.Assistant
	logger    log.Logger
}

// setup loads configuration and wires the answering pipeline.
//
// Without a Gemini API key the pipeline still works: retrieval degrades
// to full-text search and answers come from the deterministic
// synthesizer. A key enables semantic retrieval and model synthesis.
func setup(ctx context.Context, logger log.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	pool, err := database.Open(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := conversation.New(pool, logger)
	lexical := retrieval.NewLexical(pool, logger)

	var retriever retrieval.Retriever
	var synthesizer synth.Synthesizer
	if apiKey := config.GeminiAPIKey(); apiKey != "" {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:        apiKey,
			Model:         cfg.ModelName,
			EmbedderModel: cfg.EmbedderModel,
			MaxTokens:     cfg.MaxTokens,
		}, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating Gemini client: %w", err)
		}
		similarity := retrieval.NewSimilarity(pool, client, cfg.SimilarityThreshold, logger)
		retriever = retrieval.NewFallback(similarity, lexical, logger)
		synthesizer = synth.NewGemini(client)
	} else {
		logger.Warn("no Gemini API key configured, using lexical retrieval and static answers")
		retriever = lexical
		synthesizer = synth.NewStatic()
	}

	asst := assistant.New(guardrail.New(), retriever, synthesizer, store, cfg.SourceLimit, logger)

	return &app{
		cfg:       cfg,
		pool:      pool,
		store:     store,
		assistant: asst,
		logger:    logger,
	}, nil
}

// Close releases the application's resources.
func (a *app) Close() {
	a.pool.Close()
}
