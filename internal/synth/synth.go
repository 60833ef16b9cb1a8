// Package synth turns a question and its grounding context into prose.
//
// The real implementation delegates to the Gemini completion API; Static
// is a deterministic fallback that makes the pipeline testable and
// runnable without a live model.
package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noorhq/noor/internal/corpus"
)

// CompleteTimeout bounds the completion call, including its single
// retry. Server callers also sit behind an HTTP write timeout; the CLI
// path has only this bound.
const CompleteTimeout = 60 * time.Second

// Synthesizer produces the answer text for a question given the
// assembled grounding context. Implementations must not state facts
// absent from the context.
type Synthesizer interface {
	Synthesize(ctx context.Context, question, contextBlock, lang string) (string, error)
}

// Completer is the completion surface of the Gemini client, defined here
// by the consumer.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// systemPrompt constrains the model to the grounding context. The
// context block is the only material the model may draw on; the closing
// scholar reminder is appended deterministically by the pipeline, not
// left to the model.
const systemPrompt = `You are a knowledgeable assistant answering questions about Islam using only the provided sources.

Rules:
- Base every statement strictly on the numbered sources provided in the context. Never add facts from outside the context.
- Cite sources by their number, e.g. [1], after each claim they support.
- If the context says no relevant sources were found, say clearly that you could not find relevant information; do not answer from general knowledge.
- Do not give personalized religious rulings. For such matters, direct the questioner to a qualified scholar.
- Answer in %s.`

// languageName maps a language code to the name used in the prompt.
func languageName(lang string) string {
	if strings.EqualFold(lang, "ar") {
		return "Arabic"
	}
	return "English"
}

// Gemini synthesizes answers with the Gemini completion API.
type Gemini struct {
	completer Completer
}

// NewGemini creates a Gemini synthesizer.
func NewGemini(completer Completer) *Gemini {
	return &Gemini{completer: completer}
}

// Synthesize implements Synthesizer.
func (g *Gemini) Synthesize(ctx context.Context, question, contextBlock, lang string) (string, error) {
	system := fmt.Sprintf(systemPrompt, languageName(lang))
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question)

	ctx, cancel := context.WithTimeout(ctx, CompleteTimeout)
	defer cancel()

	answer, err := g.completer.Complete(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesizing answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Static is the deterministic fallback synthesizer: it renders the top
// sources with their references instead of calling a model. Used when no
// API key is configured, and in tests.
type Static struct{}

// NewStatic creates a Static synthesizer.
func NewStatic() *Static {
	return &Static{}
}

// Synthesize implements Synthesizer. The context block is already the
// rendered source list, so it is returned with a short preamble.
func (s *Static) Synthesize(_ context.Context, question, contextBlock, _ string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "The most relevant passages for %q are:\n\n", question)
	b.WriteString(contextBlock)
	return b.String(), nil
}

// FormatSources renders sources as a compact reference list, used by the
// CLI output.
func FormatSources(sources []corpus.Source) string {
	var b strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, src.Reference)
	}
	return b.String()
}
