package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/noorhq/noor/internal/corpus"
	"github.com/noorhq/noor/internal/log"
)

type fakeRetriever struct {
	sources   []corpus.Source
	err       error
	calls     int
	lastLimit int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _, _ string, limit int) ([]corpus.Source, error) {
	f.calls++
	f.lastLimit = limit
	return f.sources, f.err
}

func sourcesN(n int) []corpus.Source {
	out := make([]corpus.Source, n)
	for i := range out {
		out[i] = corpus.Source{Kind: corpus.KindQuran, Reference: "Quran 1:1"}
	}
	return out
}

func TestFallback_PrimaryHitSkipsSecondary(t *testing.T) {
	t.Parallel()

	primary := &fakeRetriever{sources: sourcesN(2)}
	secondary := &fakeRetriever{sources: sourcesN(3)}
	f := NewFallback(primary, secondary, log.NewNop())

	got, err := f.Retrieve(context.Background(), "question", "en", 5)
	if err != nil {
		t.Fatalf("Retrieve error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("sources = %d, want 2 from primary", len(got))
	}
	if secondary.calls != 0 {
		t.Error("secondary invoked although primary returned hits")
	}
}

func TestFallback_PrimaryErrorFallsThrough(t *testing.T) {
	t.Parallel()

	primary := &fakeRetriever{err: errors.New("embedding service down")}
	secondary := &fakeRetriever{sources: sourcesN(1)}
	f := NewFallback(primary, secondary, log.NewNop())

	got, err := f.Retrieve(context.Background(), "question", "en", 5)
	if err != nil {
		t.Fatalf("Retrieve error = %v, primary failure must be absorbed", err)
	}
	if secondary.calls != 1 {
		t.Fatalf("secondary calls = %d, want 1", secondary.calls)
	}
	if len(got) != 1 {
		t.Errorf("sources = %d, want 1 from secondary", len(got))
	}
}

func TestFallback_PrimaryEmptyFallsThrough(t *testing.T) {
	t.Parallel()

	primary := &fakeRetriever{}
	secondary := &fakeRetriever{sources: sourcesN(1)}
	f := NewFallback(primary, secondary, log.NewNop())

	got, err := f.Retrieve(context.Background(), "question", "en", 5)
	if err != nil {
		t.Fatalf("Retrieve error = %v", err)
	}
	if secondary.calls != 1 {
		t.Error("secondary not invoked for an empty primary result")
	}
	if len(got) != 1 {
		t.Errorf("sources = %d, want 1", len(got))
	}
}

func TestFallback_BothFailReturnsEmpty(t *testing.T) {
	t.Parallel()

	primary := &fakeRetriever{err: errors.New("down")}
	secondary := &fakeRetriever{err: errors.New("also down")}
	f := NewFallback(primary, secondary, log.NewNop())

	got, err := f.Retrieve(context.Background(), "question", "en", 5)
	if err != nil {
		t.Fatalf("Retrieve error = %v, degradation must never surface as an error", err)
	}
	if len(got) != 0 {
		t.Errorf("sources = %d, want 0", len(got))
	}
}

func TestFallback_TruncatesToLimit(t *testing.T) {
	t.Parallel()

	primary := &fakeRetriever{sources: sourcesN(8)}
	f := NewFallback(primary, &fakeRetriever{}, log.NewNop())

	got, err := f.Retrieve(context.Background(), "question", "en", 3)
	if err != nil {
		t.Fatalf("Retrieve error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("sources = %d, want 3", len(got))
	}
}

func TestFallback_DefaultsNonPositiveLimit(t *testing.T) {
	t.Parallel()

	primary := &fakeRetriever{sources: sourcesN(1)}
	f := NewFallback(primary, &fakeRetriever{}, log.NewNop())

	if _, err := f.Retrieve(context.Background(), "question", "en", 0); err != nil {
		t.Fatalf("Retrieve error = %v", err)
	}
	if primary.lastLimit != DefaultLimit {
		t.Errorf("limit = %d, want %d", primary.lastLimit, DefaultLimit)
	}
}

func TestClampQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		question string
		wantLen  int
	}{
		{"short unchanged", "What about patience?", len("What about patience?")},
		{"ascii at cap", strings.Repeat("a", MaxQueryLen), MaxQueryLen},
		{"ascii over cap", strings.Repeat("a", MaxQueryLen+100), MaxQueryLen},
		// Three-byte runes put the byte cap inside a rune; the clamp must
		// back off to the previous boundary instead of splitting it.
		{"multibyte over cap", strings.Repeat("ﻻ", 1000), MaxQueryLen - MaxQueryLen%3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := clampQuery(tt.question)
			if len(got) != tt.wantLen {
				t.Errorf("clamped to %d bytes, want %d", len(got), tt.wantLen)
			}
			if !utf8.ValidString(got) {
				t.Error("clamped query is not valid UTF-8")
			}
			if !strings.HasPrefix(tt.question, got) {
				t.Error("clamped query is not a prefix of the input")
			}
		})
	}
}
