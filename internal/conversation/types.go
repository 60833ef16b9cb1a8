// Package conversation provides append-only persistence for question
// answering turns.
//
// A conversation has exactly two states: nonexistent and active. It
// becomes active on its first turn and is never closed or mutated except
// by appending messages.
package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/noorhq/noor/internal/corpus"
)

// Role constants define valid message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxTitleLen caps a conversation title, derived from the first question.
const MaxTitleLen = 100

// Conversation is one question-answering thread.
type Conversation struct {
	ID        uuid.UUID
	Title     string
	StartedAt time.Time
}

// Message is a single user question or assistant answer. Sources is set
// only on assistant messages; empty sources on an assistant message mean
// the turn was refused or retrieval found nothing.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           string
	Content        string
	Sources        []corpus.Source
	CreatedAt      time.Time
}
