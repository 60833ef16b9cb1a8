package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/noorhq/noor/internal/assistant"
	"github.com/noorhq/noor/internal/corpus"
	"github.com/noorhq/noor/internal/i18n"
	"github.com/noorhq/noor/internal/log"
)

// MaxBodyBytes bounds the request body. The question itself is capped
// far lower; this only guards against oversized payloads.
const MaxBodyBytes = 64 * 1024

// AskHandler handles the answering endpoint.
type AskHandler struct {
	assistant *assistant.Assistant
	logger    log.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(asst *assistant.Assistant, logger log.Logger) *AskHandler {
	return &AskHandler{assistant: asst, logger: logger}
}

// RegisterRoutes registers the ask route on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.ask)
}

// AskRequest is the request body for answering a question.
type AskRequest struct {
	Question       string `json:"question"`
	Language       string `json:"language,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

// AskResponse is the response body for an answered question.
//
// Saved reports whether the turn was persisted; a false value means the
// answer is valid but the conversation id cannot be relied on for
// continuation.
type AskResponse struct {
	Answer         string          `json:"answer"`
	Sources        []corpus.Source `json:"sources"`
	ConversationID string          `json:"conversationId,omitempty"`
	Saved          bool            `json:"saved"`
}

// ask answers one question.
func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
		return
	}

	convID := uuid.Nil
	if req.ConversationID != "" {
		var err error
		convID, err = uuid.Parse(req.ConversationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "conversationId is not a valid UUID")
			return
		}
	}

	result, err := h.assistant.Answer(r.Context(), assistant.Request{
		Question:       req.Question,
		Language:       req.Language,
		ConversationID: convID,
	})
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrQuestionTooShort):
			writeError(w, http.StatusBadRequest, CodeInvalidQuestion,
				"question must be at least 5 characters")
		case errors.Is(err, assistant.ErrQuestionTooLong):
			writeError(w, http.StatusBadRequest, CodeQuestionTooLong,
				"question must be at most 500 characters")
		default:
			h.logger.Error("answering failed", "error", err)
			writeError(w, http.StatusInternalServerError, CodeInternal,
				i18n.T(req.Language, "answer.failure"))
		}
		return
	}

	resp := AskResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
		Saved:   result.Saved,
	}
	if result.ConversationID != uuid.Nil {
		resp.ConversationID = result.ConversationID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}
