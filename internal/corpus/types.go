// Package corpus defines the normalized source types shared by the
// retrieval pipeline, persistence, and the HTTP API.
package corpus

import "fmt"

// Kind discriminates the two corpus content types.
type Kind string

const (
	// KindQuran is a scripture verse (ayah) with its translation.
	KindQuran Kind = "quran"

	// KindHadith is an oral-tradition report.
	KindHadith Kind = "hadith"
)

// Valid reports whether k is a known content kind.
func (k Kind) Valid() bool {
	return k == KindQuran || k == KindHadith
}

// Source is a normalized, displayable retrieval hit. Candidates are
// created per-request at the data-access boundary and owned by that
// request until attached to an assistant message.
//
// Similarity is set only by the similarity retriever (0–1, cosine);
// lexical hits carry zero and omit the field in JSON, since full-text
// rank is not comparable to a cosine score.
type Source struct {
	Kind        Kind    `json:"kind"`
	Reference   string  `json:"reference"`
	ArabicText  string  `json:"arabicText"`
	Translation string  `json:"translationText"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// QuranReference formats the human-readable locator for an ayah,
// e.g. "Quran 2:255 (Al-Baqarah)".
func QuranReference(surahID, ayahNumber int, surahName string) string {
	if surahName == "" {
		return fmt.Sprintf("Quran %d:%d", surahID, ayahNumber)
	}
	return fmt.Sprintf("Quran %d:%d (%s)", surahID, ayahNumber, surahName)
}

// HadithReference formats the human-readable locator for a hadith,
// e.g. "Sahih al-Bukhari, Hadith 1".
func HadithReference(bookName string, hadithNumber int) string {
	return fmt.Sprintf("%s, Hadith %d", bookName, hadithNumber)
}
