package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

// SeedRun inserts a training run with small fixed counters and returns it.
func SeedRun(t *testing.T, pool *pgxpool.Pool) domain.TrainingRun {
	t.Helper()

	run := domain.TrainingRun{
		ID:             uuid.New(),
		CorpusPath:     "testdata/" + uuid.New().String()[:8] + ".tsv",
		CountThreshold: 1,
		RatioQuotient:  20,
		Sentences:      3,
		PhrasePairs:    12,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO training_runs (id, corpus_path, count_threshold, ratio_quotient, sentences, skipped, phrase_pairs, targets, entries, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.CorpusPath, run.CountThreshold, run.RatioQuotient,
		run.Sentences, run.Skipped, run.PhrasePairs, run.Targets, run.Entries, run.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRun insert: %v", err)
	}

	return run
}

// SeedEntries inserts phrase entries for runID.
func SeedEntries(t *testing.T, pool *pgxpool.Pool, runID uuid.UUID, entries ...domain.PhraseEntry) {
	t.Helper()

	for _, e := range entries {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO phrase_entries (run_id, target, source, count, probability)
			 VALUES ($1, $2, $3, $4, $5)`,
			runID, e.Target, e.Source, e.Count, e.Probability,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedEntries insert %q/%q: %v", e.Target, e.Source, err)
		}
	}
}
