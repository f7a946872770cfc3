package domain

import "fmt"

// Unaligned marks a source token that has no counterpart in the target sentence.
const Unaligned = -1

// SentencePair is one tokenized sentence and its translation.
// No invariant relates the two lengths.
type SentencePair struct {
	Source []string
	Target []string
}

// Alignment maps each source token index to the target token index it
// translates, or to Unaligned.
type Alignment []int

// IsAligned reports whether source token i has a target counterpart.
func (a Alignment) IsAligned(i int) bool {
	return a[i] != Unaligned
}

// Validate checks that a fits a sentence pair with the given token counts:
// one element per source token, each either Unaligned or a valid target index.
// The returned error wraps ErrMalformedAlignment.
func (a Alignment) Validate(sourceLen, targetLen int) error {
	if len(a) != sourceLen {
		return &AlignmentError{
			Position: -1,
			Reason:   fmt.Sprintf("length %d, source has %d tokens", len(a), sourceLen),
		}
	}
	for i, t := range a {
		if t == Unaligned {
			continue
		}
		if t < 0 || t >= targetLen {
			return &AlignmentError{
				Position: i,
				Reason:   fmt.Sprintf("target index %d out of range [0, %d)", t, targetLen),
			}
		}
	}
	return nil
}

// AlignedPair is one corpus entry: a sentence pair and its word alignment.
type AlignedPair struct {
	Pair      SentencePair
	Alignment Alignment
}

// Validate checks the alignment against the pair's token sequences.
func (p AlignedPair) Validate() error {
	return p.Alignment.Validate(len(p.Pair.Source), len(p.Pair.Target))
}
