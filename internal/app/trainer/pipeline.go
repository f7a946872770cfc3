package trainer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/phrasetable/internal/app/trainer/corpus"
	"github.com/heartmarshall/phrasetable/internal/domain"
	"github.com/heartmarshall/phrasetable/internal/phrase"
)

// Phase names in execution order.
const (
	PhaseParse     = "parse"
	PhaseAggregate = "aggregate"
	PhaseReduce    = "reduce"
	PhaseExport    = "export"
	PhaseStore     = "store"
)

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	// Items is the phase's output size: pairs parsed, phrase pairs counted,
	// entries kept, entries written or stored.
	Items    int
	Skipped  int
	Duration time.Duration
	Err      error
}

// Pipeline runs parse, aggregate, reduce, export and store over one corpus.
// Each phase consumes the previous phase's output, so the first failing
// phase stops the run.
type Pipeline struct {
	log     *slog.Logger
	repo    PhraseTableRepo
	cfg     Config
	stdout  io.Writer
	results map[string]PhaseResult
	order   []string

	pairs      []domain.AlignedPair
	raw        *phrase.Counts
	table      *phrase.Counts
	aggStats   phrase.Stats
	pruneStats phrase.PruneStats
	run        *domain.TrainingRun
}

// NewPipeline creates a new Pipeline. repo may be nil for dry runs.
func NewPipeline(log *slog.Logger, repo PhraseTableRepo, cfg Config) *Pipeline {
	return &Pipeline{
		log:     log,
		repo:    repo,
		cfg:     cfg,
		stdout:  os.Stdout,
		results: make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// Phases returns the names of the phases that ran, in order.
func (p *Pipeline) Phases() []string {
	return p.order
}

// Table returns the normalized phrase table, or nil before the reduce phase.
func (p *Pipeline) Table() *phrase.Counts {
	return p.table
}

// StoredRun returns the stored run metadata, or nil if nothing was stored.
func (p *Pipeline) StoredRun() *domain.TrainingRun {
	return p.run
}

// HasErrors returns true if any phase failed. Entries skipped under the
// skip policy are not errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Run executes all enabled phases in order.
func (p *Pipeline) Run(ctx context.Context) error {
	type phaseFn struct {
		name string
		run  func(context.Context) PhaseResult
	}

	phases := []phaseFn{
		{PhaseParse, p.runParse},
		{PhaseAggregate, p.runAggregate},
		{PhaseReduce, p.runReduce},
	}
	if p.cfg.ExportPath != "" {
		phases = append(phases, phaseFn{PhaseExport, p.runExport})
	}
	if !p.cfg.DryRun {
		phases = append(phases, phaseFn{PhaseStore, p.runStore})
	}

	for _, ph := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		p.log.Info("starting phase", slog.String("phase", ph.name))

		result := ph.run(ctx)
		result.Duration = time.Since(start)
		p.results[ph.name] = result
		p.order = append(p.order, ph.name)

		if result.Err != nil {
			p.log.Warn("phase failed",
				slog.String("phase", ph.name),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			return fmt.Errorf("%s: %w", ph.name, result.Err)
		}

		p.log.Info("phase completed",
			slog.String("phase", ph.name),
			slog.Int("items", result.Items),
			slog.Int("skipped", result.Skipped),
			slog.Duration("duration", result.Duration),
		)
	}

	p.log.Info("pipeline completed", slog.Int("phases_run", len(p.order)))
	return nil
}

func (p *Pipeline) runParse(_ context.Context) PhaseResult {
	if p.cfg.CorpusPath == "" {
		return PhaseResult{Err: fmt.Errorf("corpus path not configured")}
	}

	res, err := corpus.Parse(p.cfg.CorpusPath, corpus.Options{Lowercase: p.cfg.Lowercase})
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("parse corpus: %w", err)}
	}
	p.pairs = res.Pairs

	p.log.Info("corpus parsed",
		slog.String("path", p.cfg.CorpusPath),
		slog.Int("total_lines", res.Stats.TotalLines),
		slog.Int("comments", res.Stats.Comments),
		slog.Int("malformed", res.Stats.SkippedMalformed),
		slog.Int("pairs", res.Stats.Pairs),
	)

	return PhaseResult{Items: len(res.Pairs), Skipped: res.Stats.SkippedMalformed}
}

func (p *Pipeline) runAggregate(ctx context.Context) PhaseResult {
	policy := phrase.PolicyAbort
	if p.cfg.SkipMalformed {
		policy = phrase.PolicySkip
	}

	agg := phrase.NewAggregator(p.log, phrase.Options{
		Workers:       p.cfg.Workers,
		ProgressEvery: p.cfg.ProgressEvery,
		Progress: func(done, total int) {
			p.log.Info("aggregate progress", slog.Int("done", done), slog.Int("total", total))
		},
		Policy: policy,
	})

	counts, stats, err := agg.Aggregate(ctx, p.pairs)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("aggregate: %w", err)}
	}
	p.raw = counts
	p.aggStats = stats

	return PhaseResult{Items: stats.PhrasePairs, Skipped: stats.Skipped}
}

func (p *Pipeline) runReduce(_ context.Context) PhaseResult {
	// Reduce mutates its input; keep raw counts for storage.
	table, stats, err := phrase.Reduce(p.raw.Clone(), p.cfg.CountThreshold, p.cfg.RatioQuotient)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("reduce: %w", err)}
	}
	p.table = table
	p.pruneStats = stats

	p.log.Info("table reduced",
		slog.Int("targets_before", stats.TargetsBefore),
		slog.Int("targets_after", stats.TargetsAfter),
		slog.Int("entries_before", stats.EntriesBefore),
		slog.Int("entries_after", stats.EntriesAfter),
		slog.Int("ratio_dropped", stats.RatioDropped),
	)

	return PhaseResult{Items: stats.EntriesAfter, Skipped: stats.EntriesBefore - stats.EntriesAfter}
}

func (p *Pipeline) runExport(_ context.Context) (result PhaseResult) {
	w := p.stdout
	if p.cfg.ExportPath != "-" {
		f, err := os.Create(p.cfg.ExportPath)
		if err != nil {
			return PhaseResult{Err: fmt.Errorf("create export file: %w", err)}
		}
		defer func() {
			if err := f.Close(); err != nil && result.Err == nil {
				result = PhaseResult{Err: fmt.Errorf("close export file: %w", err)}
			}
		}()
		w = f
	}

	write := phrase.WriteTSV
	if p.cfg.Format() == FormatYAML {
		write = phrase.WriteYAML
	}
	if err := write(w, p.table); err != nil {
		return PhaseResult{Err: fmt.Errorf("write %s: %w", p.cfg.Format(), err)}
	}

	return PhaseResult{Items: p.table.Entries()}
}

func (p *Pipeline) runStore(ctx context.Context) PhaseResult {
	if p.repo == nil {
		return PhaseResult{Err: fmt.Errorf("no repository configured")}
	}

	entries := p.entries()
	run := &domain.TrainingRun{
		CorpusPath:     p.cfg.CorpusPath,
		CountThreshold: p.cfg.CountThreshold,
		RatioQuotient:  p.cfg.RatioQuotient,
		Sentences:      p.aggStats.Sentences,
		Skipped:        p.aggStats.Skipped,
		PhrasePairs:    p.aggStats.PhrasePairs,
		Targets:        p.table.Len(),
	}

	if err := p.repo.SaveTable(ctx, run, entries, p.cfg.BatchSize); err != nil {
		return PhaseResult{Err: fmt.Errorf("save table: %w", err)}
	}
	p.run = run

	p.log.Info("table stored", slog.String("run_id", run.ID.String()), slog.Int("entries", len(entries)))

	return PhaseResult{Items: len(entries)}
}

// entries flattens the normalized table, pairing each probability with the
// raw count it was computed from.
func (p *Pipeline) entries() []domain.PhraseEntry {
	out := make([]domain.PhraseEntry, 0, p.table.Entries())
	for _, target := range p.table.Targets() {
		for _, tr := range p.table.Translations(target) {
			out = append(out, domain.PhraseEntry{
				Target:      target,
				Source:      tr.Source,
				Count:       p.raw.Get(target, tr.Source),
				Probability: tr.Value,
			})
		}
	}
	return out
}
