package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/noorhq/noor/internal/corpus"
)

// Embedder turns text into a fixed-dimension vector matching the
// source_embeddings column. Interface defined here, by the consumer.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Similarity retrieves passages by embedding the question and asking the
// match_sources procedure for the nearest corpus passages, then hydrating
// each hit against its kind's tables.
//
// Any failure (embedding, procedure, hydration) is returned as an error;
// the Fallback combinator interprets it as "no semantic hits". Similarity
// never decides fallback policy itself.
//
// Similarity is safe for concurrent use by multiple goroutines.
type Similarity struct {
	db        querier
	embedder  Embedder
	threshold float64
	logger    *slog.Logger
}

// NewSimilarity creates a Similarity retriever. threshold is the minimum
// cosine similarity for a hit to count (design value 0.5).
func NewSimilarity(db querier, embedder Embedder, threshold float64, logger *slog.Logger) *Similarity {
	if logger == nil {
		logger = slog.Default()
	}
	return &Similarity{db: db, embedder: embedder, threshold: threshold, logger: logger}
}

// matchRow is one (content_id, content_type, similarity) tuple from the
// match_sources procedure, ordered by descending similarity.
type matchRow struct {
	contentID  int64
	kind       corpus.Kind
	similarity float64
}

// Retrieve implements Retriever.
func (s *Similarity) Retrieve(ctx context.Context, question, lang string, limit int) ([]corpus.Source, error) {
	question = strings.TrimSpace(question)
	if question == "" || strings.ContainsRune(question, 0) {
		return nil, nil
	}
	question = clampQuery(question)
	if limit <= 0 {
		limit = DefaultLimit
	}

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	values, err := s.embedder.Embed(embedCtx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty embedding returned for question")
	}
	vec := pgvector.NewVector(values)

	queryCtx, cancelQuery := context.WithTimeout(ctx, QueryTimeout)
	defer cancelQuery()

	rows, err := s.db.Query(queryCtx,
		`SELECT content_id, content_type, similarity
		 FROM match_sources($1, $2, $3)`,
		vec, s.threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("matching sources: %w", err)
	}
	defer rows.Close()

	var hits []matchRow
	for rows.Next() {
		var (
			h    matchRow
			kind string
		)
		if err := rows.Scan(&h.contentID, &kind, &h.similarity); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		h.kind = corpus.Kind(kind)
		if !h.kind.Valid() {
			s.logger.Warn("unknown content type from match_sources", "content_type", kind)
			continue
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading match rows: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	return s.hydrate(queryCtx, hits, lang)
}

// hydrate resolves raw (id, kind) hits into display sources. Both kinds
// are resolved with one join query each; hits whose row no longer exists
// are dropped, not errored. Order and similarity of the procedure output
// are preserved.
func (s *Similarity) hydrate(ctx context.Context, hits []matchRow, lang string) ([]corpus.Source, error) {
	var quranIDs, hadithIDs []int64
	for _, h := range hits {
		switch h.kind {
		case corpus.KindQuran:
			quranIDs = append(quranIDs, h.contentID)
		case corpus.KindHadith:
			hadithIDs = append(hadithIDs, h.contentID)
		}
	}

	quranByID, err := s.hydrateQuran(ctx, quranIDs, lang)
	if err != nil {
		return nil, err
	}
	hadithByID, err := s.hydrateHadith(ctx, hadithIDs)
	if err != nil {
		return nil, err
	}

	sources := make([]corpus.Source, 0, len(hits))
	for _, h := range hits {
		var (
			src corpus.Source
			ok  bool
		)
		switch h.kind {
		case corpus.KindQuran:
			src, ok = quranByID[h.contentID]
		case corpus.KindHadith:
			src, ok = hadithByID[h.contentID]
		}
		if !ok {
			s.logger.Warn("match hit has no corpus row, dropping",
				"content_id", h.contentID, "content_type", h.kind)
			continue
		}
		src.Similarity = h.similarity
		sources = append(sources, src)
	}
	return sources, nil
}

// hydrateQuran resolves ayah ids to display sources. The translation in
// the requested language is preferred, falling back to English.
func (s *Similarity) hydrateQuran(ctx context.Context, ids []int64, lang string) (map[int64]corpus.Source, error) {
	byID := make(map[int64]corpus.Source, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT a.id, a.surah_id, a.ayah_number, a.text_arabic, s.name_english,
		        COALESCE(tr.text, te.text, '')
		 FROM ayahs a
		 JOIN surahs s ON s.id = a.surah_id
		 LEFT JOIN quran_translations tr ON tr.ayah_id = a.id AND tr.language = $2
		 LEFT JOIN quran_translations te ON te.ayah_id = a.id AND te.language = 'en'
		 WHERE a.id = ANY($1)`,
		ids, lang,
	)
	if err != nil {
		return nil, fmt.Errorf("hydrating quran hits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var surahID, ayahNum int
		var arabic, surahName, translation string
		if err := rows.Scan(&id, &surahID, &ayahNum, &arabic, &surahName, &translation); err != nil {
			return nil, fmt.Errorf("scanning ayah row: %w", err)
		}
		byID[id] = corpus.Source{
			Kind:        corpus.KindQuran,
			Reference:   corpus.QuranReference(surahID, ayahNum, surahName),
			ArabicText:  arabic,
			Translation: translation,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading ayah rows: %w", err)
	}
	return byID, nil
}

// hydrateHadith resolves hadith ids to display sources, symmetric to the
// quran join.
func (s *Similarity) hydrateHadith(ctx context.Context, ids []int64) (map[int64]corpus.Source, error) {
	byID := make(map[int64]corpus.Source, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT h.id, h.hadith_number, h.text_arabic, h.text_en, b.name
		 FROM hadiths h
		 JOIN hadith_books b ON b.id = h.book_id
		 WHERE h.id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("hydrating hadith hits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var number int
		var arabic, english, bookName string
		if err := rows.Scan(&id, &number, &arabic, &english, &bookName); err != nil {
			return nil, fmt.Errorf("scanning hadith row: %w", err)
		}
		byID[id] = corpus.Source{
			Kind:        corpus.KindHadith,
			Reference:   corpus.HadithReference(bookName, number),
			ArabicText:  arabic,
			Translation: english,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading hadith rows: %w", err)
	}
	return byID, nil
}
