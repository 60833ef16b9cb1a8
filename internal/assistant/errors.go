package assistant

import "errors"

// Question length bounds, measured in runes after trimming surrounding
// whitespace.
const (
	MinQuestionLen = 5
	MaxQuestionLen = 500
)

// Sentinel errors returned by Answer for invalid input; check with
// errors.Is.
var (
	// ErrQuestionTooShort indicates the trimmed question is below
	// MinQuestionLen runes.
	ErrQuestionTooShort = errors.New("question too short")

	// ErrQuestionTooLong indicates the trimmed question exceeds
	// MaxQuestionLen runes.
	ErrQuestionTooLong = errors.New("question too long")
)
