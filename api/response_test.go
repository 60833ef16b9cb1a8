package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noorhq/noor/internal/corpus"
)

func TestWriteJSON_AnswerPayload(t *testing.T) {
	w := httptest.NewRecorder()

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:  "Patience is praised [1].",
		Sources: []corpus.Source{{Kind: corpus.KindQuran, Reference: "Quran 2:153 (Al-Baqarah)"}},
		Saved:   true,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Patience is praised [1].", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Quran 2:153 (Al-Baqarah)", result.Sources[0].Reference)
	assert.True(t, result.Saved)
}

func TestWriteError_Codes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    string
		message string
	}{
		{"question too short", http.StatusBadRequest, CodeInvalidQuestion, "question must be at least 5 characters"},
		{"question too long", http.StatusBadRequest, CodeQuestionTooLong, "question must be at most 500 characters"},
		{"malformed request", http.StatusBadRequest, CodeInvalidRequest, "invalid conversation id"},
		{"unknown conversation", http.StatusNotFound, CodeNotFound, "conversation not found"},
		{"dependency down", http.StatusServiceUnavailable, CodeUnavailable, "database not ready"},
		{"pipeline failure", http.StatusInternalServerError, CodeInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tt.status, tt.code, tt.message)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var result ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.Equal(t, tt.code, result.Error)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestWriteError_OmitsEmptyMessage(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, http.StatusInternalServerError, CodeInternal, "")

	assert.NotContains(t, w.Body.String(), "message")
}
