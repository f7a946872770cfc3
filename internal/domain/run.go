package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrainingRun is the persisted metadata of one phrase-table build.
type TrainingRun struct {
	ID             uuid.UUID `db:"id"`
	CorpusPath     string    `db:"corpus_path"`
	CountThreshold float64   `db:"count_threshold"`
	RatioQuotient  float64   `db:"ratio_quotient"`
	Sentences      int       `db:"sentences"`
	Skipped        int       `db:"skipped"`
	PhrasePairs    int       `db:"phrase_pairs"`
	Targets        int       `db:"targets"`
	Entries        int       `db:"entries"`
	CreatedAt      time.Time `db:"created_at"`
}

// PhraseEntry is one row of a finished phrase table: the raw co-occurrence
// count that survived pruning and the normalized P(source | target).
type PhraseEntry struct {
	Target      string  `db:"target"`
	Source      string  `db:"source"`
	Count       float64 `db:"count"`
	Probability float64 `db:"probability"`
}
