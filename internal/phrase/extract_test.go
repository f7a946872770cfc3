package phrase

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

const u = domain.Unaligned

func sp(srcLo, srcHi, tgtLo, tgtHi int) domain.SpanPair {
	return domain.SpanPair{
		Source: domain.Span{Lo: srcLo, Hi: srcHi},
		Target: domain.Span{Lo: tgtLo, Hi: tgtHi},
	}
}

func sortSpanPairs(pairs []domain.SpanPair) {
	slices.SortFunc(pairs, func(a, b domain.SpanPair) int {
		for _, d := range []int{
			a.Source.Lo - b.Source.Lo, a.Source.Hi - b.Source.Hi,
			a.Target.Lo - b.Target.Lo, a.Target.Hi - b.Target.Hi,
		} {
			if d != 0 {
				return d
			}
		}
		return 0
	})
}

// bruteForceSpans checks every source span independently: the target range
// is recomputed from scratch instead of being tracked incrementally.
func bruteForceSpans(alignment domain.Alignment) []domain.SpanPair {
	var out []domain.SpanPair
	for i := range alignment {
		for j := i; j < len(alignment); j++ {
			lo, hi, found := 0, 0, false
			for k := i; k <= j; k++ {
				if alignment[k] == u {
					continue
				}
				if !found {
					lo, hi, found = alignment[k], alignment[k], true
					continue
				}
				lo = min(lo, alignment[k])
				hi = max(hi, alignment[k])
			}
			if !found {
				continue
			}
			ok := true
			for q := range alignment {
				if q >= i && q <= j {
					continue
				}
				if alignment[q] != u && alignment[q] >= lo && alignment[q] <= hi {
					ok = false
					break
				}
			}
			if ok {
				out = append(out, sp(i, j, lo, hi))
			}
		}
	}
	return out
}

func TestSpans_Golden(t *testing.T) {
	t.Parallel()

	alignment := domain.Alignment{0, 1, 1, 4, 6, 8, 7}
	want := []domain.SpanPair{
		sp(0, 0, 0, 0), sp(0, 2, 0, 1), sp(0, 3, 0, 4), sp(0, 4, 0, 6), sp(0, 6, 0, 8),
		sp(1, 2, 1, 1), sp(1, 3, 1, 4), sp(1, 4, 1, 6), sp(1, 6, 1, 8),
		sp(3, 3, 4, 4), sp(3, 4, 4, 6), sp(3, 6, 4, 8),
		sp(4, 4, 6, 6), sp(4, 6, 6, 8),
		sp(5, 5, 8, 8), sp(5, 6, 7, 8),
		sp(6, 6, 7, 7),
	}

	got := Spans(alignment)
	sortSpanPairs(got)
	require.Equal(t, want, got)
}

func TestSpans_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		alignment domain.Alignment
		want      []domain.SpanPair
	}{
		{
			name:      "empty sentence",
			alignment: domain.Alignment{},
			want:      nil,
		},
		{
			name:      "all unaligned",
			alignment: domain.Alignment{u, u, u},
			want:      nil,
		},
		{
			name:      "single word",
			alignment: domain.Alignment{0},
			want:      []domain.SpanPair{sp(0, 0, 0, 0)},
		},
		{
			name:      "unaligned prefix and gap",
			alignment: domain.Alignment{u, 0, u, 1},
			want: []domain.SpanPair{
				sp(0, 1, 0, 0), sp(0, 2, 0, 0), sp(0, 3, 0, 1),
				sp(1, 1, 0, 0), sp(1, 2, 0, 0), sp(1, 3, 0, 1),
				sp(2, 3, 1, 1),
				sp(3, 3, 1, 1),
			},
		},
		{
			name:      "inversion",
			alignment: domain.Alignment{1, 0},
			want:      []domain.SpanPair{sp(0, 0, 1, 1), sp(0, 1, 0, 1), sp(1, 1, 0, 0)},
		},
		{
			name:      "many to one blocks the single word",
			alignment: domain.Alignment{0, 0},
			want:      []domain.SpanPair{sp(0, 1, 0, 0)},
		},
		{
			name:      "trailing unaligned word widens the source span only",
			alignment: domain.Alignment{0, u},
			want:      []domain.SpanPair{sp(0, 0, 0, 0), sp(0, 1, 0, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Spans(tt.alignment)
			sortSpanPairs(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func randomAlignment(rng *rand.Rand) (domain.Alignment, int) {
	srcLen := 1 + rng.Intn(9)
	tgtLen := 1 + rng.Intn(9)
	a := make(domain.Alignment, srcLen)
	for i := range a {
		if rng.Intn(4) == 0 {
			a[i] = u
			continue
		}
		a[i] = rng.Intn(tgtLen)
	}
	return a, tgtLen
}

func TestSpans_MatchesBruteForce(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for range 500 {
		a, _ := randomAlignment(rng)

		got := Spans(a)
		want := bruteForceSpans(a)
		sortSpanPairs(got)
		sortSpanPairs(want)
		require.Equal(t, want, got, "alignment %v", a)
	}
}

func TestSpans_NoAlignmentEdgeCrossesIntoTarget(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for range 500 {
		a, _ := randomAlignment(rng)
		seen := make(map[domain.Span]bool)

		for _, p := range Spans(a) {
			require.False(t, seen[p.Source], "source span %v reported twice for %v", p.Source, a)
			seen[p.Source] = true

			for q, tgt := range a {
				if p.Source.Contains(q) || tgt == u {
					continue
				}
				require.False(t, p.Target.Contains(tgt),
					"alignment %v: source %d outside %v aligns into %v", a, q, p.Source, p.Target)
			}
		}
	}
}

func TestSpans_DiagonalIncludesWholeSentence(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 12; n++ {
		a := make(domain.Alignment, n)
		for i := range a {
			a[i] = i * 2 // strictly increasing, one target per source word
		}
		whole := sp(0, n-1, 0, 2*(n-1))
		assert.Contains(t, Spans(a), whole, "diagonal alignment of length %d", n)
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	pair := domain.SentencePair{
		Source: []string{"the", "black", "cat"},
		Target: []string{"le", "chat", "noir"},
	}
	got, err := Extract(pair, domain.Alignment{0, 2, 1})
	require.NoError(t, err)

	rendered := make([][2]string, len(got))
	for i, p := range got {
		rendered[i] = [2]string{p.Source, p.Target}
	}
	want := [][2]string{
		{"the", "le"},
		{"the black cat", "le chat noir"},
		{"black", "noir"},
		{"black cat", "chat noir"},
		{"cat", "chat"},
	}
	assert.Equal(t, want, rendered)
}

func TestExtract_MalformedAlignment(t *testing.T) {
	t.Parallel()

	pair := domain.SentencePair{Source: []string{"a", "b"}, Target: []string{"x"}}

	tests := []struct {
		name      string
		alignment domain.Alignment
	}{
		{"length mismatch", domain.Alignment{0}},
		{"index out of range", domain.Alignment{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Extract(pair, tt.alignment)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedAlignment)
			assert.Nil(t, got)
		})
	}
}
