package domain

import (
	"errors"
	"testing"
)

func TestAlignment_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		alignment Alignment
		srcLen    int
		tgtLen    int
		wantPos   int
		wantErr   bool
	}{
		{name: "diagonal", alignment: Alignment{0, 1, 2}, srcLen: 3, tgtLen: 3},
		{name: "with unaligned", alignment: Alignment{Unaligned, 0, Unaligned}, srcLen: 3, tgtLen: 1},
		{name: "empty sentence", alignment: Alignment{}, srcLen: 0, tgtLen: 0},
		{name: "too short", alignment: Alignment{0}, srcLen: 2, tgtLen: 2, wantErr: true, wantPos: -1},
		{name: "too long", alignment: Alignment{0, 1, 1}, srcLen: 2, tgtLen: 2, wantErr: true, wantPos: -1},
		{name: "index past target", alignment: Alignment{0, 2}, srcLen: 2, tgtLen: 2, wantErr: true, wantPos: 1},
		{name: "negative other than unaligned", alignment: Alignment{-2, 0}, srcLen: 2, tgtLen: 2, wantErr: true, wantPos: 0},
		{name: "aligned into empty target", alignment: Alignment{0}, srcLen: 1, tgtLen: 0, wantErr: true, wantPos: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.alignment.Validate(tt.srcLen, tt.tgtLen)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrMalformedAlignment) {
				t.Fatalf("Validate() = %v, want ErrMalformedAlignment", err)
			}
			var ae *AlignmentError
			if !errors.As(err, &ae) {
				t.Fatalf("Validate() error is not *AlignmentError: %T", err)
			}
			if ae.Position != tt.wantPos {
				t.Errorf("Position = %d, want %d", ae.Position, tt.wantPos)
			}
		})
	}
}

func TestAlignedPair_Validate(t *testing.T) {
	t.Parallel()

	p := AlignedPair{
		Pair:      SentencePair{Source: []string{"black", "cat"}, Target: []string{"chat", "noir"}},
		Alignment: Alignment{1, 0},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	p.Alignment = Alignment{1}
	if err := p.Validate(); !errors.Is(err, ErrMalformedAlignment) {
		t.Fatalf("Validate() = %v, want ErrMalformedAlignment", err)
	}
}

func TestSpan(t *testing.T) {
	t.Parallel()

	tokens := []string{"the", "black", "cat", "sat"}
	s := Span{Lo: 1, Hi: 2}

	if got := s.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := s.Phrase(tokens); got != "black cat" {
		t.Errorf("Phrase() = %q, want %q", got, "black cat")
	}
	if !s.Contains(1) || !s.Contains(2) || s.Contains(0) || s.Contains(3) {
		t.Error("Contains() wrong at span boundary")
	}
	if got := s.String(); got != "[1,2]" {
		t.Errorf("String() = %q", got)
	}
}
