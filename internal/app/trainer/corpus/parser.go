// Package corpus parses word-aligned bilingual corpus files.
// Pure function: file path in, domain structs out. No database dependencies.
//
// Each line holds one entry: source sentence, target sentence and the
// alignment vector, separated by tabs. The alignment lists one integer per
// source token, -1 for an unaligned token:
//
//	the black cat	le chat noir	0 2 1
//
// Blank lines and lines starting with '#' are ignored.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

const maxLineLen = 1024 * 1024

// Options controls tokenization.
type Options struct {
	// Lowercase normalizes both sentences with domain.NormalizeText.
	Lowercase bool
}

// ParseResult holds the parsed corpus.
type ParseResult struct {
	Pairs []domain.AlignedPair
	Stats Stats
}

// Stats holds parser statistics for logging.
type Stats struct {
	TotalLines       int
	Comments         int
	SkippedMalformed int
	Pairs            int
}

// Parse reads an aligned corpus file.
func Parse(filePath string, opts Options) (ParseResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return ParseResult{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ParseReader(f, opts)
}

// ParseReader reads an aligned corpus from r. Lines that are not valid UTF-8,
// cannot be split into three fields or whose alignment is not a list of
// integers are counted in Stats.SkippedMalformed. Alignment/token length agreement is not checked
// here; that is left to the aggregator's error policy.
func ParseReader(r io.Reader, opts Options) (ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)

	var result ParseResult
	var stats Stats

	for scanner.Scan() {
		stats.TotalLines++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			stats.Comments++
			continue
		}

		pair, ok := parseLine(line, opts)
		if !ok {
			stats.SkippedMalformed++
			continue
		}
		result.Pairs = append(result.Pairs, pair)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{}, fmt.Errorf("scanner error: %w", err)
	}

	stats.Pairs = len(result.Pairs)
	result.Stats = stats
	return result, nil
}

func parseLine(line string, opts Options) (domain.AlignedPair, bool) {
	if !utf8.ValidString(line) {
		return domain.AlignedPair{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return domain.AlignedPair{}, false
	}

	alignment, err := ParseAlignment(fields[2])
	if err != nil {
		return domain.AlignedPair{}, false
	}

	return domain.AlignedPair{
		Pair: domain.SentencePair{
			Source: domain.Tokens(fields[0], opts.Lowercase),
			Target: domain.Tokens(fields[1], opts.Lowercase),
		},
		Alignment: alignment,
	}, true
}

// ParseAlignment parses a whitespace-separated list of target indices.
func ParseAlignment(s string) (domain.Alignment, error) {
	items := strings.Fields(s)
	alignment := make(domain.Alignment, len(items))
	for i, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("alignment item %d: %w", i, err)
		}
		alignment[i] = n
	}
	return alignment, nil
}
