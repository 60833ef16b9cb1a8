package assistant

import (
	"fmt"
	"strings"

	"github.com/noorhq/noor/internal/corpus"
)

// NoSourcesSentinel is the context block handed to the synthesizer when
// retrieval found nothing. The system prompt keys off this exact phrase
// to make the model acknowledge the gap instead of improvising.
const NoSourcesSentinel = "No relevant sources found in the database."

// BuildContext renders retrieved sources into the numbered grounding
// block the synthesizer cites from. Sources are rendered in the order
// given; the function is pure and never reorders, filters or fetches.
func BuildContext(sources []corpus.Source) string {
	if len(sources) == 0 {
		return NoSourcesSentinel
	}

	var b strings.Builder
	for i, src := range sources {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, src.Reference)
		if src.ArabicText != "" {
			fmt.Fprintf(&b, "Arabic: %s\n", src.ArabicText)
		}
		fmt.Fprintf(&b, "Translation: %s", src.Translation)
	}
	return b.String()
}
