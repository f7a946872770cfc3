// Package phrasetable persists finished phrase tables and the metadata of the
// training runs that produced them.
package phrasetable

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/phrasetable/internal/adapter/postgres"
	"github.com/heartmarshall/phrasetable/internal/domain"
)

const (
	tableRuns    = "training_runs"
	tableEntries = "phrase_entries"

	defaultListLimit = 50
)

var runColumns = []string{
	"id", "corpus_path", "count_threshold", "ratio_quotient",
	"sentences", "skipped", "phrase_pairs", "targets", "entries", "created_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides phrase table persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.DB
	txm *postgres.TxManager
}

// New creates a new phrase table repository.
func New(db postgres.DB, txm *postgres.TxManager) *Repo {
	return &Repo{db: db, txm: txm}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// CreateRun inserts run. A nil ID and a zero CreatedAt are filled in place.
func (r *Repo) CreateRun(ctx context.Context, run *domain.TrainingRun) error {
	if run == nil {
		return fmt.Errorf("training run is required: %w", domain.ErrValidation)
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	query, args, err := psql.Insert(tableRuns).
		Columns(runColumns...).
		Values(
			run.ID, run.CorpusPath, run.CountThreshold, run.RatioQuotient,
			run.Sentences, run.Skipped, run.PhrasePairs, run.Targets, run.Entries, run.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert training_run: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "training_run", run.ID)
	}
	return nil
}

// BulkInsertEntries inserts phrase entries of runID using pgx.Batch.
// Existing rows (by run, target, source) are skipped via ON CONFLICT DO NOTHING.
// Returns the number of actually inserted rows.
func (r *Repo) BulkInsertEntries(ctx context.Context, runID uuid.UUID, entries []domain.PhraseEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO phrase_entries (run_id, target, source, count, probability)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (run_id, target, source) DO NOTHING`,
			runID, e.Target, e.Source, e.Count, e.Probability,
		)
	}

	results := postgres.QuerierFromCtx(ctx, r.db).SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, postgres.MapError(fmt.Errorf("batch exec: %w", err), "training_run", runID)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// SaveTable stores run and all of its entries in one transaction, sending
// the entries in batches of batchSize. run.Entries is set to the number of
// inserted rows before the run row is written.
func (r *Repo) SaveTable(ctx context.Context, run *domain.TrainingRun, entries []domain.PhraseEntry, batchSize int) error {
	if batchSize <= 0 {
		return domain.NewValidationError("batch_size", fmt.Sprintf("must be > 0 (got %d)", batchSize))
	}
	if run == nil {
		return fmt.Errorf("training run is required: %w", domain.ErrValidation)
	}

	return r.txm.RunInTx(ctx, func(ctx context.Context) error {
		run.Entries = len(entries)
		if err := r.CreateRun(ctx, run); err != nil {
			return err
		}

		for start := 0; start < len(entries); start += batchSize {
			end := min(start+batchSize, len(entries))
			if _, err := r.BulkInsertEntries(ctx, run.ID, entries[start:end]); err != nil {
				return fmt.Errorf("entries [%d:%d]: %w", start, end, err)
			}
		}
		return nil
	})
}

// DeleteRun removes a run together with its entries.
// Returns domain.ErrNotFound if the run does not exist.
func (r *Repo) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.NewValidationError("run_id", "is required")
	}

	query, args, err := psql.Delete(tableRuns).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete training_run: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "training_run", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("training_run %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetRun returns a run by ID. Returns domain.ErrNotFound if not found.
func (r *Repo) GetRun(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("run_id", "is required")
	}

	query, args, err := psql.Select(runColumns...).
		From(tableRuns).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select training_run: %w", err)
	}

	var run domain.TrainingRun
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &run, query, args...); err != nil {
		return nil, postgres.MapError(err, "training_run", id)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first. A non-positive limit means
// the default of 50.
func (r *Repo) ListRuns(ctx context.Context, limit int) ([]domain.TrainingRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query, args, err := psql.Select(runColumns...).
		From(tableRuns).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list training_runs: %w", err)
	}

	var runs []domain.TrainingRun
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &runs, query, args...); err != nil {
		return nil, postgres.MapError(err, "training_run", uuid.Nil)
	}
	return runs, nil
}

// Lookup returns the translation distribution of target within a run,
// most probable source phrase first. Ties are broken by source text.
// Whitespace in target is collapsed the way corpus tokens are joined.
// An unknown target yields an empty slice.
func (r *Repo) Lookup(ctx context.Context, runID uuid.UUID, target string) ([]domain.PhraseEntry, error) {
	if runID == uuid.Nil {
		return nil, domain.NewValidationError("run_id", "is required")
	}

	query, args, err := psql.Select("target", "source", "count", "probability").
		From(tableEntries).
		Where(squirrel.Eq{"run_id": runID, "target": strings.Join(domain.Tokens(target, false), " ")}).
		OrderBy("probability DESC", "source ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup phrase_entries: %w", err)
	}

	var entries []domain.PhraseEntry
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &entries, query, args...); err != nil {
		return nil, postgres.MapError(err, "training_run", runID)
	}
	return entries, nil
}
