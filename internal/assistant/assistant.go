// Package assistant orchestrates one question-answering turn: guardrail
// check, source retrieval, grounding context assembly, answer synthesis
// and best-effort persistence.
//
// Stage contract: the guardrail runs before any network call; retrieval
// degradation is absorbed (an empty source list is an answerable state,
// not an error); synthesis failure is the only fatal stage. Persistence
// never fails a turn — the caller learns about it through Result.Saved.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/noorhq/noor/internal/corpus"
	"github.com/noorhq/noor/internal/guardrail"
	"github.com/noorhq/noor/internal/i18n"
	"github.com/noorhq/noor/internal/retrieval"
	"github.com/noorhq/noor/internal/synth"
)

// Store is the persistence surface the assistant consumes, satisfied by
// *conversation.Store. Defined by the consumer for testability.
type Store interface {
	GetOrCreate(ctx context.Context, id uuid.UUID, titleSeed string) (uuid.UUID, error)
	AppendTurn(ctx context.Context, id uuid.UUID, question, answer string, sources []corpus.Source) error
}

// Request is one question submitted for answering. A zero ConversationID
// starts a new conversation; a non-zero one appends to an existing one.
type Request struct {
	Question       string
	Language       string
	ConversationID uuid.UUID
}

// Result is the outcome of an answered turn.
//
// Saved reports whether the turn was persisted; an unsaved turn still
// carries a complete answer. ConversationID is the id the turn was (or
// would have been) stored under; it is the zero UUID when a new
// conversation could not be created.
type Result struct {
	Answer         string
	Sources        []corpus.Source
	ConversationID uuid.UUID
	Saved          bool
	Refused        bool
}

// Assistant runs the answering pipeline. Safe for concurrent use.
type Assistant struct {
	guard       *guardrail.Filter
	retriever   retrieval.Retriever
	synthesizer synth.Synthesizer
	store       Store
	limit       int
	logger      *slog.Logger
}

// New creates an Assistant. limit caps the sources per answer; a
// non-positive value falls back to the retrieval default.
func New(guard *guardrail.Filter, retriever retrieval.Retriever, synthesizer synth.Synthesizer, store Store, limit int, logger *slog.Logger) *Assistant {
	if limit <= 0 {
		limit = retrieval.DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		guard:       guard,
		retriever:   retriever,
		synthesizer: synthesizer,
		store:       store,
		limit:       limit,
		logger:      logger,
	}
}

// Answer runs one full turn.
//
// It returns an error only for invalid input (ErrQuestionTooShort,
// ErrQuestionTooLong) or a synthesis failure; every other degradation is
// absorbed into the Result. A blocked question is answered with a
// templated refusal and never reaches the embedding or completion
// services.
func (a *Assistant) Answer(ctx context.Context, req Request) (*Result, error) {
	question := strings.TrimSpace(req.Question)
	switch n := utf8.RuneCountInString(question); {
	case n < MinQuestionLen:
		return nil, fmt.Errorf("question length %d: %w", n, ErrQuestionTooShort)
	case n > MaxQuestionLen:
		return nil, fmt.Errorf("question length %d: %w", n, ErrQuestionTooLong)
	}
	lang := i18n.Normalize(req.Language)

	if topic, blocked := a.guard.Check(question); blocked {
		a.logger.Info("question blocked by guardrail", "topic", topic)
		answer := i18n.Sprintf(lang, "answer.refusal", topic)
		return a.finish(ctx, req.ConversationID, question, answer, nil, true), nil
	}

	sources, err := a.retriever.Retrieve(ctx, question, lang, a.limit)
	if err != nil {
		// The fallback retriever never errors; guard anyway so a future
		// retriever swap cannot fail the turn.
		a.logger.Warn("retrieval failed, answering without sources", "error", err)
		sources = nil
	}

	var answer string
	if len(sources) == 0 {
		a.logger.Info("no sources found", "lang", lang)
		answer = i18n.T(lang, "answer.no_sources")
	} else {
		contextBlock := BuildContext(sources)
		answer, err = a.synthesizer.Synthesize(ctx, question, contextBlock, lang)
		if err != nil {
			return nil, fmt.Errorf("answering question: %w", err)
		}
		answer += "\n\n" + i18n.T(lang, "answer.reminder")
	}

	return a.finish(ctx, req.ConversationID, question, answer, sources, false), nil
}

// persistTimeout bounds the datastore writes of a turn. Persistence is
// best-effort; a hung lock wait must not hold the finished answer.
const persistTimeout = 10 * time.Second

// finish persists the turn best-effort and assembles the Result.
// Persistence errors are logged and reported through Result.Saved, never
// returned: by this point a complete answer exists and the user gets it.
func (a *Assistant) finish(ctx context.Context, convID uuid.UUID, question, answer string, sources []corpus.Source, refused bool) *Result {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if sources == nil {
		sources = []corpus.Source{}
	}
	res := &Result{
		Answer:  answer,
		Sources: sources,
		Refused: refused,
	}

	id, err := a.store.GetOrCreate(ctx, convID, question)
	if err != nil {
		a.logger.Warn("conversation lookup failed, turn not persisted", "error", err)
		return res
	}
	res.ConversationID = id

	if err := a.store.AppendTurn(ctx, id, question, answer, sources); err != nil {
		a.logger.Warn("turn persistence failed", "conversation_id", id, "error", err)
		return res
	}

	res.Saved = true
	return res
}
