package phrase

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

func TestWriteTSV(t *testing.T) {
	t.Parallel()

	c := NewCounts()
	c.Add("maison", "home", 0.25)
	c.Add("maison", "house", 0.75)
	c.Add("chat noir", "black cat", 1)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, c))

	want := "chat noir ||| black cat ||| 1\n" +
		"maison ||| house ||| 0.75\n" +
		"maison ||| home ||| 0.25\n"
	assert.Equal(t, want, buf.String())

	back, err := ReadTSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Map(), back.Map())
}

func TestWriteTSV_RejectsSeparatorToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		target, source string
	}{
		{"target inner token", "a ||| b", "x"},
		{"target trailing token", "a |||", "x"},
		{"source leading token", "chat", "||| cat"},
		{"source is the token", "chat", "|||"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCounts()
			c.Add("maison", "house", 1)
			c.Add(tt.target, tt.source, 1)

			var buf bytes.Buffer
			err := WriteTSV(&buf, c)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, buf.Len(), "nothing is written for a rejected table")
		})
	}
}

func TestWriteTSV_SeparatorInsideTokenRoundTrips(t *testing.T) {
	t.Parallel()

	c := NewCounts()
	c.Add("a|||b", "x", 1)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, c))

	back, err := ReadTSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Map(), back.Map())
}

func TestReadTSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing field", "chat ||| cat\n", "line 1: want 3 fields"},
		{"bad value", "\nchat ||| cat ||| many\n", "line 2: parse value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadTSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	c := NewCounts()
	c.Add("maison", "house", 0.75)
	c.Add("maison", "home", 0.25)
	c.Add("chat", "cat", 1)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, c))

	want := "chat:\n  cat: 1\nmaison:\n  home: 0.25\n  house: 0.75\n"
	assert.Equal(t, want, buf.String())
}
