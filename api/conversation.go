package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/noorhq/noor/internal/conversation"
	"github.com/noorhq/noor/internal/corpus"
	"github.com/noorhq/noor/internal/log"
)

// ConversationHandler handles conversation history endpoints.
type ConversationHandler struct {
	store  *conversation.Store
	logger log.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(store *conversation.Store, logger log.Logger) *ConversationHandler {
	return &ConversationHandler{store: store, logger: logger}
}

// RegisterRoutes registers conversation routes on the given mux.
func (h *ConversationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/conversations/{id}", h.history)
}

// MessageResponse is one message in a conversation history response.
type MessageResponse struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Sources   []corpus.Source `json:"sources,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// HistoryResponse is the response body for a conversation history.
type HistoryResponse struct {
	ConversationID string            `json:"conversationId"`
	Messages       []MessageResponse `json:"messages"`
}

// history returns all messages of a conversation in chronological order.
func (h *ConversationHandler) history(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "id is not a valid UUID")
		return
	}

	messages, err := h.store.LoadHistory(r.Context(), id)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, CodeNotFound, "conversation not found")
			return
		}
		h.logger.Error("failed to load history", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load conversation")
		return
	}

	resp := HistoryResponse{
		ConversationID: id.String(),
		Messages:       make([]MessageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, MessageResponse{
			Role:      msg.Role,
			Content:   msg.Content,
			Sources:   msg.Sources,
			CreatedAt: msg.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
