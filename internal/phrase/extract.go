// Package phrase builds a phrase translation table from a word-aligned
// corpus: consistent phrase pair extraction, count aggregation, pruning and
// normalization into P(source | target).
package phrase

import (
	"github.com/heartmarshall/phrasetable/internal/domain"
)

// rangeState is the target range induced by the source words seen so far
// while a span [i, j] grows to the right. Unaligned words leave it untouched;
// until the first aligned word is seen there is no range at all.
type rangeState struct {
	bounds      domain.Span
	seenAligned bool
}

func (s *rangeState) extend(target int) {
	if target == domain.Unaligned {
		return
	}
	if !s.seenAligned {
		s.bounds = domain.Span{Lo: target, Hi: target}
		s.seenAligned = true
		return
	}
	if target < s.bounds.Lo {
		s.bounds.Lo = target
	} else if target > s.bounds.Hi {
		s.bounds.Hi = target
	}
}

// Spans returns every consistent (source span, target span) pair of a
// sentence with the given alignment. The alignment must already be valid.
//
// For each source span [i, j] the target span is the minimal range covering
// the targets of its aligned words; spans with no aligned word are skipped.
// A pair is consistent when no source word outside [i, j] aligns into the
// target span. Target words inside the span that align back outside [i, j]
// are not checked separately (one-sided check, see DESIGN.md).
//
// Each (i, j) yields at most one pair. Distinct source spans may share a
// target span; those are all reported.
func Spans(alignment domain.Alignment) []domain.SpanPair {
	n := len(alignment)
	var pairs []domain.SpanPair

	for i := range n {
		var state rangeState
		for j := i; j < n; j++ {
			state.extend(alignment[j])
			if !state.seenAligned {
				continue
			}
			if consistent(alignment, i, j, state.bounds) {
				pairs = append(pairs, domain.SpanPair{
					Source: domain.Span{Lo: i, Hi: j},
					Target: state.bounds,
				})
			}
		}
	}

	return pairs
}

// consistent reports whether no source word outside [i, j] aligns into target.
func consistent(alignment domain.Alignment, i, j int, target domain.Span) bool {
	for q := range i {
		if alignment.IsAligned(q) && target.Contains(alignment[q]) {
			return false
		}
	}
	for q := j + 1; q < len(alignment); q++ {
		if alignment.IsAligned(q) && target.Contains(alignment[q]) {
			return false
		}
	}
	return true
}

// Extract validates alignment against pair and returns its consistent phrase
// pairs rendered as space-joined phrases. On a malformed alignment it returns
// an error wrapping domain.ErrMalformedAlignment and no pairs.
func Extract(pair domain.SentencePair, alignment domain.Alignment) ([]domain.PhrasePair, error) {
	if err := alignment.Validate(len(pair.Source), len(pair.Target)); err != nil {
		return nil, err
	}

	spans := Spans(alignment)
	if len(spans) == 0 {
		return nil, nil
	}

	out := make([]domain.PhrasePair, len(spans))
	for k, sp := range spans {
		out[k] = domain.PhrasePair{
			Source: sp.Source.Phrase(pair.Source),
			Target: sp.Target.Phrase(pair.Target),
			Spans:  sp,
		}
	}
	return out, nil
}
