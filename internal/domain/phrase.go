package domain

import (
	"fmt"
	"strings"
)

// Span is an inclusive token index range [Lo, Hi] with Lo <= Hi.
type Span struct {
	Lo int
	Hi int
}

// Len returns the number of tokens covered by s.
func (s Span) Len() int {
	return s.Hi - s.Lo + 1
}

// Contains reports whether index i lies inside s.
func (s Span) Contains(i int) bool {
	return i >= s.Lo && i <= s.Hi
}

// Phrase joins the tokens covered by s with a single space.
func (s Span) Phrase(tokens []string) string {
	return strings.Join(tokens[s.Lo:s.Hi+1], " ")
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d]", s.Lo, s.Hi)
}

// SpanPair is a consistent (source span, target span) pair of one sentence.
type SpanPair struct {
	Source Span
	Target Span
}

// PhrasePair is a SpanPair rendered as phrase strings.
type PhrasePair struct {
	Source string
	Target string
	Spans  SpanPair
}
