// Package trainer builds a phrase table from an aligned corpus file and
// hands it to storage.
package trainer

import (
	"context"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

// PhraseTableRepo is the storage contract consumed by the training pipeline.
// It uses only domain types. Implemented by phrasetable.Repo.
type PhraseTableRepo interface {
	// SaveTable stores the run and its entries atomically.
	SaveTable(ctx context.Context, run *domain.TrainingRun, entries []domain.PhraseEntry, batchSize int) error
}
