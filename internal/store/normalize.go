package store

import (
	"strings"
	"unicode/utf8"

	"github.com/example/vocabmaster/internal/apperrors"
)

// MaxWordLength is the exclusive upper bound on a normalized word's length in characters
const MaxWordLength = 100

// Normalize lowercases text, collapses internal whitespace to single spaces and trims it.
// Empty results and results of MaxWordLength characters or more are rejected.
func Normalize(text string) (string, error) {
	word := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if word == "" {
		return "", apperrors.Validation("word", "must not be empty")
	}
	if n := utf8.RuneCountInString(word); n >= MaxWordLength {
		return "", apperrors.Validation("word", "must be shorter than %d characters, got %d", MaxWordLength, n)
	}
	return word, nil
}
