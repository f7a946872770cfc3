package trainer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/heartmarshall/phrasetable/internal/domain"
	"github.com/heartmarshall/phrasetable/internal/phrase"
)

// LookupFile returns the distribution of target in a table previously
// written by the export phase in TSV form. Whitespace in target is collapsed
// the way corpus tokens are joined. An unknown target yields an empty slice.
func LookupFile(path, target string) ([]domain.PhraseEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	table, err := phrase.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}

	target = strings.Join(domain.Tokens(target, false), " ")
	translations := table.Translations(target)
	out := make([]domain.PhraseEntry, 0, len(translations))
	for _, tr := range translations {
		out = append(out, domain.PhraseEntry{Target: target, Source: tr.Source, Probability: tr.Value})
	}
	return out, nil
}

// PrintRuns writes one tab-separated summary line per run.
func PrintRuns(w io.Writer, runs []domain.TrainingRun) error {
	for _, r := range runs {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\tsentences=%d\tentries=%d\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.CorpusPath, r.Sentences, r.Entries); err != nil {
			return err
		}
	}
	return nil
}

// PrintRun writes every stored field of run as aligned key/value lines.
func PrintRun(w io.Writer, run *domain.TrainingRun) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"id", run.ID.String()},
		{"created_at", run.CreatedAt.Format(time.RFC3339)},
		{"corpus_path", run.CorpusPath},
		{"count_threshold", strconv.FormatFloat(run.CountThreshold, 'g', -1, 64)},
		{"ratio_quotient", strconv.FormatFloat(run.RatioQuotient, 'g', -1, 64)},
		{"sentences", strconv.Itoa(run.Sentences)},
		{"skipped", strconv.Itoa(run.Skipped)},
		{"phrase_pairs", strconv.Itoa(run.PhrasePairs)},
		{"targets", strconv.Itoa(run.Targets)},
		{"entries", strconv.Itoa(run.Entries)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// PrintEntries writes "source<TAB>probability" lines, plus the raw count
// when it is known.
func PrintEntries(w io.Writer, entries []domain.PhraseEntry) error {
	for _, e := range entries {
		line := e.Source + "\t" + strconv.FormatFloat(e.Probability, 'g', -1, 64)
		if e.Count > 0 {
			line += "\t" + strconv.FormatFloat(e.Count, 'g', -1, 64)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
