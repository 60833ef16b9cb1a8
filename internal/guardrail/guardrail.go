// Package guardrail rejects out-of-policy questions before any retrieval
// or model call happens.
//
// The filter is the sole cost-control point in front of the embedding and
// completion services: a blocked question must never reach either. It is
// a case-insensitive substring match against a fixed block-topic list —
// no network, no state, O(topics × question length).
//
// Note: no filter is perfect. Paraphrases can slip through; the system
// prompt instructs the model to decline personalized rulings as a second
// layer.
package guardrail

import (
	"strings"
	"unicode"
)

// Filter checks questions against an immutable block-topic list.
// The zero value is not useful; use New or NewWithTopics.
//
// Filter is safe for concurrent use: the topic list is never mutated
// after construction.
type Filter struct {
	topics []string
}

// New creates a Filter with the default block-topic list.
func New() *Filter {
	return &Filter{topics: defaultTopics}
}

// NewWithTopics creates a Filter with a custom topic list. Topics are
// lowercased and trimmed; empty entries are dropped. The input slice is
// copied so later mutation by the caller cannot affect the filter.
func NewWithTopics(topics []string) *Filter {
	cleaned := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return &Filter{topics: cleaned}
}

// Check returns the first block-topic the question matches, and whether
// a match was found. Matching is case-insensitive over a normalized form
// of the question (zero-width characters stripped, whitespace collapsed).
func (f *Filter) Check(question string) (string, bool) {
	normalized := normalize(question)
	for _, topic := range f.topics {
		if strings.Contains(normalized, topic) {
			return topic, true
		}
	}
	return "", false
}

// normalize prepares a question for matching.
//   - lowercases
//   - strips zero-width and combining characters that could evade matching
//   - collapses all whitespace runs to single spaces
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
