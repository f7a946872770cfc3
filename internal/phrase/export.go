package phrase

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

// fieldSep separates target, source and value in the text table format.
const fieldSep = " ||| "

// WriteTSV writes c as "target ||| source ||| value" lines. Targets are
// written in ascending order, candidates in Translations order.
//
// A phrase holding "|||" as a token cannot be read back by ReadTSV, so such
// an entry fails with domain.ErrValidation before anything is written.
func WriteTSV(w io.Writer, c *Counts) error {
	for _, target := range c.Targets() {
		if hasFieldSep(target) {
			return fmt.Errorf("target %q contains %q: %w", target, fieldSep, domain.ErrValidation)
		}
		for _, tr := range c.Translations(target) {
			if hasFieldSep(tr.Source) {
				return fmt.Errorf("source %q of target %q contains %q: %w", tr.Source, target, fieldSep, domain.ErrValidation)
			}
		}
	}

	bw := bufio.NewWriter(w)
	for _, target := range c.Targets() {
		for _, tr := range c.Translations(target) {
			value := strconv.FormatFloat(tr.Value, 'g', -1, 64)
			if _, err := bw.WriteString(target + fieldSep + tr.Source + fieldSep + value + "\n"); err != nil {
				return fmt.Errorf("write entry: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func hasFieldSep(s string) bool {
	return strings.Contains(" "+s+" ", fieldSep)
}

// ReadTSV parses the format produced by WriteTSV. Blank lines are ignored.
func ReadTSV(r io.Reader) (*Counts, error) {
	counts := NewCounts()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, fieldSep)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", line, len(fields))
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse value: %w", line, err)
		}
		counts.Add(fields[0], fields[1], value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return counts, nil
}

// WriteYAML writes c as a YAML mapping of target → {source: value}.
func WriteYAML(w io.Writer, c *Counts) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Map()); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}
	return nil
}
