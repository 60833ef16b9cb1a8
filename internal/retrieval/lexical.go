package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/noorhq/noor/internal/corpus"
)

// Lexical retrieves passages with Postgres full-text search. It is the
// guaranteed-available fallback: no embedding model, only the datastore's
// native tsquery matching.
//
// Two independent queries run concurrently — scripture translations
// (filtered to the requested language) and hadith English text — each
// capped at limit rows. Results are concatenated scripture-first; the
// two tables give no comparable relevance score, so the fixed order is
// the deterministic tie-break. One query failing does not discard the
// other's rows; only both failing is an error.
//
// Lexical is safe for concurrent use by multiple goroutines.
type Lexical struct {
	db     querier
	logger *slog.Logger
}

// NewLexical creates a Lexical retriever.
func NewLexical(db querier, logger *slog.Logger) *Lexical {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lexical{db: db, logger: logger}
}

// Retrieve implements Retriever.
func (l *Lexical) Retrieve(ctx context.Context, question, lang string, limit int) ([]corpus.Source, error) {
	question = strings.TrimSpace(question)
	if question == "" || strings.ContainsRune(question, 0) {
		return nil, nil
	}
	question = clampQuery(question)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if lang == "" {
		lang = "en"
	}

	queryCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var (
		wg         sync.WaitGroup
		quranHits  []corpus.Source
		hadithHits []corpus.Source
		quranErr   error
		hadithErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		quranHits, quranErr = l.searchQuran(queryCtx, question, lang, limit)
	}()
	go func() {
		defer wg.Done()
		hadithHits, hadithErr = l.searchHadith(queryCtx, question, limit)
	}()
	wg.Wait()

	if quranErr != nil {
		l.logger.Warn("quran text search failed, using hadith results only", "error", quranErr)
	}
	if hadithErr != nil {
		l.logger.Warn("hadith text search failed, using quran results only", "error", hadithErr)
	}
	if quranErr != nil && hadithErr != nil {
		return nil, fmt.Errorf("text search failed on both tables: %w", quranErr)
	}

	sources := make([]corpus.Source, 0, len(quranHits)+len(hadithHits))
	sources = append(sources, quranHits...)
	sources = append(sources, hadithHits...)
	return sources, nil
}

// searchQuran runs the full-text query over scripture translations in
// the requested language.
func (l *Lexical) searchQuran(ctx context.Context, question, lang string, limit int) ([]corpus.Source, error) {
	rows, err := l.db.Query(ctx,
		`SELECT a.surah_id, a.ayah_number, a.text_arabic, s.name_english, t.text
		 FROM quran_translations t
		 JOIN ayahs a ON a.id = t.ayah_id
		 JOIN surahs s ON s.id = a.surah_id
		 WHERE t.language = $1
		   AND to_tsvector('english', t.text) @@ plainto_tsquery('english', $2)
		 ORDER BY ts_rank_cd(to_tsvector('english', t.text), plainto_tsquery('english', $2)) DESC
		 LIMIT $3`,
		lang, question, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching quran translations: %w", err)
	}
	defer rows.Close()

	var sources []corpus.Source
	for rows.Next() {
		var surahID, ayahNum int
		var arabic, surahName, translation string
		if err := rows.Scan(&surahID, &ayahNum, &arabic, &surahName, &translation); err != nil {
			return nil, fmt.Errorf("scanning quran search row: %w", err)
		}
		sources = append(sources, corpus.Source{
			Kind:        corpus.KindQuran,
			Reference:   corpus.QuranReference(surahID, ayahNum, surahName),
			ArabicText:  arabic,
			Translation: translation,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading quran search rows: %w", err)
	}
	return sources, nil
}

// searchHadith runs the full-text query over hadith English text.
func (l *Lexical) searchHadith(ctx context.Context, question string, limit int) ([]corpus.Source, error) {
	rows, err := l.db.Query(ctx,
		`SELECT h.hadith_number, h.text_arabic, h.text_en, b.name
		 FROM hadiths h
		 JOIN hadith_books b ON b.id = h.book_id
		 WHERE to_tsvector('english', h.text_en) @@ plainto_tsquery('english', $1)
		 ORDER BY ts_rank_cd(to_tsvector('english', h.text_en), plainto_tsquery('english', $1)) DESC
		 LIMIT $2`,
		question, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching hadiths: %w", err)
	}
	defer rows.Close()

	var sources []corpus.Source
	for rows.Next() {
		var number int
		var arabic, english, bookName string
		if err := rows.Scan(&number, &arabic, &english, &bookName); err != nil {
			return nil, fmt.Errorf("scanning hadith search row: %w", err)
		}
		sources = append(sources, corpus.Source{
			Kind:        corpus.KindHadith,
			Reference:   corpus.HadithReference(bookName, number),
			ArabicText:  arabic,
			Translation: english,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading hadith search rows: %w", err)
	}
	return sources, nil
}
