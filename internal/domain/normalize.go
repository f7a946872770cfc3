package domain

import (
	"strings"
)

// NormalizeText prepares text for tokenization and comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses runs of whitespace into one space
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Tokens splits a sentence on whitespace. With lowercase set, the sentence is
// first normalized by NormalizeText. An empty or blank sentence yields nil.
func Tokens(sentence string, lowercase bool) []string {
	if lowercase {
		sentence = NormalizeText(sentence)
	}
	fields := strings.Fields(sentence)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
