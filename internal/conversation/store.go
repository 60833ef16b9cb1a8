package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noorhq/noor/internal/corpus"
)

// DB is the database surface the Store consumes, satisfied by
// *pgxpool.Pool. Defined by the consumer for testability.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store persists conversations and messages.
//
// Store is safe for concurrent use by multiple goroutines. Appends to
// the same conversation are serialized by a row lock, so history never
// interleaves turns.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a Store.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// GetOrCreate returns the conversation id for a turn. A supplied id is
// used as-is — existence is not pre-checked here; it is deferred to the
// datastore's referential integrity on append. The zero UUID creates a
// new conversation titled with the first MaxTitleLen characters of
// titleSeed.
func (s *Store) GetOrCreate(ctx context.Context, id uuid.UUID, titleSeed string) (uuid.UUID, error) {
	if id != uuid.Nil {
		return id, nil
	}

	title := truncateTitle(titleSeed)
	var created uuid.UUID
	err := s.db.QueryRow(ctx,
		`INSERT INTO conversations (title) VALUES ($1) RETURNING id`,
		title,
	).Scan(&created)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating conversation: %w", err)
	}

	s.logger.Debug("created conversation", "id", created, "title", title)
	return created, nil
}

// AppendTurn persists one logical turn — the user question followed by
// the assistant answer with its sources — in a single transaction.
//
// The conversation row is locked FOR UPDATE for the duration, so
// concurrent turns on the same id serialize and loadHistory can never
// observe a half-written turn or an order inconsistent with submission.
// Timestamps use clock_timestamp() rather than now() so the two rows of
// a turn get distinct, increasing values inside one transaction.
func (s *Store) AppendTurn(ctx context.Context, id uuid.UUID, question, answer string, sources []corpus.Source) error {
	if sources == nil {
		sources = []corpus.Source{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshaling sources: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", err)
		}
	}()

	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM conversations WHERE id = $1 FOR UPDATE`, id,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("appending turn to %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("locking conversation: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO messages (conversation_id, role, content, created_at)
		 VALUES ($1, $2, $3, clock_timestamp())`,
		id, RoleUser, question,
	); err != nil {
		return fmt.Errorf("inserting user message: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO messages (conversation_id, role, content, sources, created_at)
		 VALUES ($1, $2, $3, $4, clock_timestamp())`,
		id, RoleAssistant, answer, sourcesJSON,
	); err != nil {
		return fmt.Errorf("inserting assistant message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing turn: %w", err)
	}

	s.logger.Debug("appended turn", "conversation_id", id, "sources", len(sources))
	return nil
}

// LoadHistory returns all messages of a conversation ordered by
// created_at ascending. Returns ErrNotFound if the conversation id does
// not exist.
func (s *Store) LoadHistory(ctx context.Context, id uuid.UUID) ([]Message, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking conversation %s: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("loading history for %s: %w", id, ErrNotFound)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, conversation_id, role, content, sources, created_at
		 FROM messages
		 WHERE conversation_id = $1
		 ORDER BY created_at ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		var sourcesJSON []byte
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &sourcesJSON, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		if len(sourcesJSON) > 0 {
			if err := json.Unmarshal(sourcesJSON, &msg.Sources); err != nil {
				s.logger.Warn("failed to unmarshal message sources",
					"message_id", msg.ID, "error", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading message rows: %w", err)
	}

	return messages, nil
}

// truncateTitle derives a conversation title from the first question,
// rune-safe at MaxTitleLen.
func truncateTitle(seed string) string {
	runes := []rune(seed)
	if len(runes) > MaxTitleLen {
		return string(runes[:MaxTitleLen])
	}
	return seed
}
