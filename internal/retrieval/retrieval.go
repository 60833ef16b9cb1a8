// Package retrieval finds the corpus passages most relevant to a
// question.
//
// Two strategies implement the same Retriever interface: Similarity
// (embedding + pgvector nearest-neighbour) and Lexical (Postgres
// full-text search). Fallback combines them: similarity is the default
// path, lexical the guaranteed-available fallback when the semantic path
// errors or finds nothing. The two result sets are never merged — a
// tsquery rank and a cosine score are not comparable, and mixing them
// would produce a misleading combined ranking.
package retrieval

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noorhq/noor/internal/corpus"
)

const (
	// EmbedTimeout bounds the embedding call for a query.
	EmbedTimeout = 10 * time.Second

	// QueryTimeout bounds each database search query.
	QueryTimeout = 10 * time.Second

	// MaxQueryLen truncates pathological question lengths before search.
	MaxQueryLen = 2000

	// DefaultLimit is the number of sources returned when the caller
	// passes a non-positive limit.
	DefaultLimit = 5
)

// Retriever finds passages relevant to a question. lang selects the
// translation language for scripture text (normalized by the caller,
// default "en"). Implementations return candidates in relevance order.
type Retriever interface {
	Retrieve(ctx context.Context, question, lang string, limit int) ([]corpus.Source, error)
}

// querier is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Fallback selects one retrieval strategy per question: the primary
// (similarity) result is used as-is when non-empty; on error or empty it
// falls through to the secondary (lexical). Retrieval degradation is
// never surfaced as an error — Fallback always returns a (possibly
// empty) candidate list, so a retrieval failure can never abort the
// answering turn.
type Fallback struct {
	primary   Retriever
	secondary Retriever
	logger    *slog.Logger
}

// NewFallback creates the fallback combinator.
func NewFallback(primary, secondary Retriever, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Retrieve implements Retriever. The returned error is always nil; it is
// kept for interface symmetry.
func (f *Fallback) Retrieve(ctx context.Context, question, lang string, limit int) ([]corpus.Source, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sources, err := f.primary.Retrieve(ctx, question, lang, limit)
	if err != nil {
		f.logger.Warn("similarity retrieval failed, falling back to lexical", "error", err)
	} else if len(sources) > 0 {
		return truncate(sources, limit), nil
	}

	sources, err = f.secondary.Retrieve(ctx, question, lang, limit)
	if err != nil {
		f.logger.Warn("lexical retrieval failed", "error", err)
		return nil, nil
	}
	return truncate(sources, limit), nil
}

func truncate(sources []corpus.Source, limit int) []corpus.Source {
	if len(sources) > limit {
		return sources[:limit]
	}
	return sources
}

// clampQuery caps a question at MaxQueryLen bytes without splitting a
// multi-byte rune, which would hand invalid UTF-8 to the embedder and
// tsquery.
func clampQuery(question string) string {
	if len(question) <= MaxQueryLen {
		return question
	}
	cut := MaxQueryLen
	for cut > 0 && !utf8.RuneStart(question[cut]) {
		cut--
	}
	return question[:cut]
}
