package phrase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

// ErrorPolicy decides what happens to a sentence pair whose alignment is malformed.
type ErrorPolicy int

const (
	// PolicyAbort stops aggregation at the first malformed sentence pair.
	PolicyAbort ErrorPolicy = iota
	// PolicySkip drops the malformed sentence pair and continues.
	PolicySkip
)

// ProgressFunc receives the number of processed sentence pairs and the corpus
// size. With more than one worker it is called from several goroutines.
type ProgressFunc func(done, total int)

// Options configures an Aggregator.
type Options struct {
	// Workers is the number of goroutines extracting in parallel (default 1).
	Workers int
	// ProgressEvery triggers Progress after every N processed pairs; 0 disables it.
	ProgressEvery int
	Progress      ProgressFunc
	Policy        ErrorPolicy
}

// Stats summarizes one aggregation pass.
type Stats struct {
	Sentences   int
	Skipped     int
	PhrasePairs int
}

// Aggregator runs the extractor over a corpus and folds the phrase pairs into Counts.
type Aggregator struct {
	log  *slog.Logger
	opts Options
}

// NewAggregator creates an Aggregator. A nil logger falls back to slog.Default.
func NewAggregator(log *slog.Logger, opts Options) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Aggregator{log: log, opts: opts}
}

// Aggregate counts the phrase pairs of corpus sequentially, aborting on the
// first malformed sentence pair.
func Aggregate(corpus []domain.AlignedPair) (*Counts, error) {
	counts, _, err := NewAggregator(nil, Options{}).Aggregate(context.Background(), corpus)
	return counts, err
}

// Aggregate extracts the phrase pairs of every corpus entry and increments
// counts[target][source] by 1 for each of them.
//
// The corpus is split into contiguous shards, one per worker; each worker
// fills a private Counts and the partial tables are summed at the end, so the
// result does not depend on the number of workers or on corpus order.
// A malformed sentence pair never contributes partial counts. Under
// PolicyAbort the returned error wraps domain.ErrMalformedAlignment and
// names the corpus index.
func (a *Aggregator) Aggregate(ctx context.Context, corpus []domain.AlignedPair) (*Counts, Stats, error) {
	total := len(corpus)
	if total == 0 {
		return NewCounts(), Stats{}, nil
	}

	workers := min(a.opts.Workers, total)
	shardSize := (total + workers - 1) / workers

	partials := make([]*Counts, workers)
	shardStats := make([]Stats, workers)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo := w * shardSize
		hi := min(lo+shardSize, total)
		partials[w] = NewCounts()
		if lo >= hi {
			continue
		}

		g.Go(func() error {
			counts := partials[w]
			st := &shardStats[w]
			for idx := lo; idx < hi; idx++ {
				if err := gctx.Err(); err != nil {
					return err
				}

				n, err := addSentence(counts, corpus[idx])
				switch {
				case err == nil:
					st.PhrasePairs += n
				case a.opts.Policy == PolicySkip:
					st.Skipped++
					a.log.Warn("skipping malformed sentence pair",
						slog.Int("index", idx),
						slog.String("error", err.Error()),
					)
				default:
					return fmt.Errorf("sentence %d: %w", idx, err)
				}

				a.tick(int(done.Add(1)), total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	counts := partials[0]
	stats := Stats{Sentences: total}
	for w := range workers {
		if w > 0 {
			counts.Merge(partials[w])
		}
		stats.Skipped += shardStats[w].Skipped
		stats.PhrasePairs += shardStats[w].PhrasePairs
	}

	a.log.Debug("aggregation finished",
		slog.Int("sentences", stats.Sentences),
		slog.Int("skipped", stats.Skipped),
		slog.Int("phrase_pairs", stats.PhrasePairs),
		slog.Int("targets", counts.Len()),
	)

	return counts, stats, nil
}

func (a *Aggregator) tick(done, total int) {
	every := a.opts.ProgressEvery
	if every <= 0 || done%every != 0 {
		return
	}
	if a.opts.Progress != nil {
		a.opts.Progress(done, total)
	}
}

// addSentence extracts one sentence pair into counts and returns the number
// of phrase pairs added.
func addSentence(counts *Counts, entry domain.AlignedPair) (int, error) {
	pairs, err := Extract(entry.Pair, entry.Alignment)
	if err != nil {
		return 0, err
	}
	for _, p := range pairs {
		counts.Add(p.Target, p.Source, 1.0)
	}
	return len(pairs), nil
}
