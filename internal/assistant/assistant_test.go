package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/noorhq/noor/internal/corpus"
	"github.com/noorhq/noor/internal/guardrail"
	"github.com/noorhq/noor/internal/i18n"
	"github.com/noorhq/noor/internal/log"
)

type stubRetriever struct {
	sources   []corpus.Source
	err       error
	calls     int
	lastLang  string
	lastLimit int
}

func (s *stubRetriever) Retrieve(_ context.Context, _, lang string, limit int) ([]corpus.Source, error) {
	s.calls++
	s.lastLang = lang
	s.lastLimit = limit
	return s.sources, s.err
}

type stubSynthesizer struct {
	answer      string
	err         error
	calls       int
	lastContext string
	lastLang    string
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _, contextBlock, lang string) (string, error) {
	s.calls++
	s.lastContext = contextBlock
	s.lastLang = lang
	return s.answer, s.err
}

type stubStore struct {
	newID     uuid.UUID
	getErr    error
	appendErr error

	appended     bool
	appendedTo   uuid.UUID
	hadDeadline  bool
	lastQuestion string
	lastAnswer   string
	lastSources  []corpus.Source
}

func (s *stubStore) GetOrCreate(ctx context.Context, id uuid.UUID, _ string) (uuid.UUID, error) {
	_, s.hadDeadline = ctx.Deadline()
	if s.getErr != nil {
		return uuid.Nil, s.getErr
	}
	if id != uuid.Nil {
		return id, nil
	}
	return s.newID, nil
}

func (s *stubStore) AppendTurn(ctx context.Context, id uuid.UUID, question, answer string, sources []corpus.Source) error {
	_, s.hadDeadline = ctx.Deadline()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = true
	s.appendedTo = id
	s.lastQuestion = question
	s.lastAnswer = answer
	s.lastSources = sources
	return nil
}

func quranSources() []corpus.Source {
	return []corpus.Source{
		{
			Kind:        corpus.KindQuran,
			Reference:   "Quran 2:255 (Al-Baqarah)",
			ArabicText:  "الله لا إله إلا هو",
			Translation: "Allah - there is no deity except Him.",
			Similarity:  0.82,
		},
		{
			Kind:        corpus.KindHadith,
			Reference:   "Sahih al-Bukhari, Hadith 1",
			Translation: "Actions are judged by intentions.",
			Similarity:  0.71,
		},
	}
}

func newTestAssistant(ret *stubRetriever, syn *stubSynthesizer, store *stubStore) *Assistant {
	return New(guardrail.New(), ret, syn, store, 5, log.NewNop())
}

func TestAnswer_ValidatesQuestionLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		question string
		wantErr  error
	}{
		{"empty", "", ErrQuestionTooShort},
		{"whitespace only", "   \t  ", ErrQuestionTooShort},
		{"four runes", "abcd", ErrQuestionTooShort},
		{"padded short", "  ab  ", ErrQuestionTooShort},
		{"too long", strings.Repeat("s", 501), ErrQuestionTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ret := &stubRetriever{}
			a := newTestAssistant(ret, &stubSynthesizer{}, &stubStore{newID: uuid.New()})

			_, err := a.Answer(context.Background(), Request{Question: tt.question})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Answer error = %v, want %v", err, tt.wantErr)
			}
			if ret.calls != 0 {
				t.Error("retriever called for an invalid question")
			}
		})
	}
}

func TestAnswer_BoundaryLengthsAccepted(t *testing.T) {
	t.Parallel()

	for _, n := range []int{MinQuestionLen, MaxQuestionLen} {
		ret := &stubRetriever{}
		a := newTestAssistant(ret, &stubSynthesizer{}, &stubStore{newID: uuid.New()})

		_, err := a.Answer(context.Background(), Request{Question: strings.Repeat("s", n)})
		if err != nil {
			t.Errorf("Answer(%d runes) error = %v, want nil", n, err)
		}
	}
}

func TestAnswer_BlockedQuestionShortCircuits(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{sources: quranSources()}
	syn := &stubSynthesizer{answer: "should not be used"}
	store := &stubStore{newID: uuid.New()}
	a := newTestAssistant(ret, syn, store)

	result, err := a.Answer(context.Background(), Request{
		Question: "What is the istikhara ruling for my situation?",
	})
	if err != nil {
		t.Fatalf("Answer error = %v", err)
	}

	if !result.Refused {
		t.Error("Refused = false, want true")
	}
	if ret.calls != 0 {
		t.Error("retriever called for a blocked question")
	}
	if syn.calls != 0 {
		t.Error("synthesizer called for a blocked question")
	}
	if !strings.Contains(result.Answer, "istikhara ruling") {
		t.Errorf("refusal %q does not name the blocked topic", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("refusal carries %d sources, want 0", len(result.Sources))
	}
	if !result.Saved {
		t.Error("refused turn was not persisted")
	}
	if store.lastAnswer != result.Answer {
		t.Error("persisted answer differs from returned answer")
	}
}

func TestAnswer_SynthesizesFromRetrievedSources(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{sources: quranSources()}
	syn := &stubSynthesizer{answer: "Ayat al-Kursi describes Allah's sovereignty [1]."}
	store := &stubStore{newID: uuid.New()}
	a := newTestAssistant(ret, syn, store)

	result, err := a.Answer(context.Background(), Request{
		Question: "What does Ayat al-Kursi say?",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Answer error = %v", err)
	}

	if syn.calls != 1 {
		t.Fatalf("synthesizer calls = %d, want 1", syn.calls)
	}
	if !strings.Contains(syn.lastContext, "[1] Quran 2:255 (Al-Baqarah)") {
		t.Errorf("synthesizer context missing numbered reference:\n%s", syn.lastContext)
	}
	if !strings.HasPrefix(result.Answer, syn.answer) {
		t.Errorf("answer %q does not start with the synthesized text", result.Answer)
	}
	reminder := i18n.T(i18n.LangEN, "answer.reminder")
	if !strings.Contains(result.Answer, reminder) {
		t.Error("scholar reminder not appended to the answer")
	}
	if len(result.Sources) != 2 {
		t.Errorf("Sources = %d, want 2", len(result.Sources))
	}
	if !result.Saved {
		t.Error("Saved = false, want true")
	}
	if store.lastAnswer != result.Answer {
		t.Error("persisted answer differs from returned answer")
	}
	if len(store.lastSources) != 2 {
		t.Errorf("persisted sources = %d, want 2", len(store.lastSources))
	}
}

func TestAnswer_NoSources(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{}
	syn := &stubSynthesizer{}
	store := &stubStore{newID: uuid.New()}
	a := newTestAssistant(ret, syn, store)

	result, err := a.Answer(context.Background(), Request{
		Question: "Something the corpus does not cover at all",
	})
	if err != nil {
		t.Fatalf("Answer error = %v", err)
	}

	if syn.calls != 0 {
		t.Error("synthesizer called with no sources")
	}
	want := i18n.T(i18n.LangEN, "answer.no_sources")
	if result.Answer != want {
		t.Errorf("answer = %q, want %q", result.Answer, want)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Errorf("Sources = %#v, want empty non-nil slice", result.Sources)
	}
	if !result.Saved {
		t.Error("no-sources turn was not persisted")
	}
}

func TestAnswer_RetrieverErrorAbsorbed(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{err: errors.New("database down")}
	syn := &stubSynthesizer{}
	a := newTestAssistant(ret, syn, &stubStore{newID: uuid.New()})

	result, err := a.Answer(context.Background(), Request{
		Question: "What does the Quran say about patience?",
	})
	if err != nil {
		t.Fatalf("Answer error = %v, retrieval failure must not be fatal", err)
	}
	if syn.calls != 0 {
		t.Error("synthesizer called after retrieval failure")
	}
	if result.Answer != i18n.T(i18n.LangEN, "answer.no_sources") {
		t.Errorf("answer = %q, want the no-sources message", result.Answer)
	}
}

func TestAnswer_SynthesisFailureIsFatal(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{sources: quranSources()}
	syn := &stubSynthesizer{err: errors.New("model unavailable")}
	store := &stubStore{newID: uuid.New()}
	a := newTestAssistant(ret, syn, store)

	_, err := a.Answer(context.Background(), Request{
		Question: "What does Ayat al-Kursi say?",
	})
	if err == nil {
		t.Fatal("Answer error = nil, want synthesis failure")
	}
	if store.appended {
		t.Error("turn persisted despite synthesis failure")
	}
}

func TestAnswer_PersistenceFailureDoesNotFailTurn(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{sources: quranSources()}
	syn := &stubSynthesizer{answer: "Grounded answer [1]."}
	id := uuid.New()
	store := &stubStore{newID: id, appendErr: errors.New("disk full")}
	a := newTestAssistant(ret, syn, store)

	result, err := a.Answer(context.Background(), Request{
		Question: "What does Ayat al-Kursi say?",
	})
	if err != nil {
		t.Fatalf("Answer error = %v, persistence failure must not be fatal", err)
	}
	if result.Saved {
		t.Error("Saved = true, want false")
	}
	if !strings.HasPrefix(result.Answer, syn.answer) {
		t.Error("answer lost on persistence failure")
	}
	if result.ConversationID != id {
		t.Errorf("ConversationID = %s, want %s", result.ConversationID, id)
	}
}

func TestAnswer_ConversationCreateFailure(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{sources: quranSources()}
	syn := &stubSynthesizer{answer: "Grounded answer [1]."}
	store := &stubStore{getErr: errors.New("database down")}
	a := newTestAssistant(ret, syn, store)

	result, err := a.Answer(context.Background(), Request{
		Question: "What does Ayat al-Kursi say?",
	})
	if err != nil {
		t.Fatalf("Answer error = %v", err)
	}
	if result.Saved {
		t.Error("Saved = true, want false")
	}
	if result.ConversationID != uuid.Nil {
		t.Errorf("ConversationID = %s, want zero UUID", result.ConversationID)
	}
}

func TestAnswer_ContinuesSuppliedConversation(t *testing.T) {
	t.Parallel()

	supplied := uuid.New()
	ret := &stubRetriever{sources: quranSources()}
	store := &stubStore{}
	a := newTestAssistant(ret, &stubSynthesizer{answer: "ok [1]"}, store)

	result, err := a.Answer(context.Background(), Request{
		Question:       "What does Ayat al-Kursi say?",
		ConversationID: supplied,
	})
	if err != nil {
		t.Fatalf("Answer error = %v", err)
	}
	if result.ConversationID != supplied {
		t.Errorf("ConversationID = %s, want supplied %s", result.ConversationID, supplied)
	}
	if store.appendedTo != supplied {
		t.Errorf("turn appended to %s, want %s", store.appendedTo, supplied)
	}
}

func TestAnswer_ArabicLanguage(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{}
	a := newTestAssistant(ret, &stubSynthesizer{}, &stubStore{newID: uuid.New()})

	result, err := a.Answer(context.Background(), Request{
		Question: "سؤال عن الصبر في القرآن",
		Language: "ar",
	})
	if err != nil {
		t.Fatalf("Answer error = %v", err)
	}
	if ret.lastLang != i18n.LangAR {
		t.Errorf("retriever lang = %q, want %q", ret.lastLang, i18n.LangAR)
	}
	if result.Answer != i18n.T(i18n.LangAR, "answer.no_sources") {
		t.Errorf("answer = %q, want the Arabic no-sources message", result.Answer)
	}
}

func TestAnswer_PersistenceCarriesDeadline(t *testing.T) {
	t.Parallel()

	store := &stubStore{newID: uuid.New()}
	a := newTestAssistant(&stubRetriever{}, &stubSynthesizer{}, store)

	if _, err := a.Answer(context.Background(), Request{Question: "What about patience?"}); err != nil {
		t.Fatalf("Answer error = %v", err)
	}
	if !store.hadDeadline {
		t.Error("persistence writes carry no deadline")
	}
}

func TestAnswer_PassesConfiguredLimit(t *testing.T) {
	t.Parallel()

	ret := &stubRetriever{}
	a := New(guardrail.New(), ret, &stubSynthesizer{}, &stubStore{newID: uuid.New()}, 3, log.NewNop())

	if _, err := a.Answer(context.Background(), Request{Question: "What about patience?"}); err != nil {
		t.Fatalf("Answer error = %v", err)
	}
	if ret.lastLimit != 3 {
		t.Errorf("limit = %d, want 3", ret.lastLimit)
	}
}
