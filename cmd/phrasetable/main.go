// Command phrasetable builds a phrase translation table from a word-aligned
// bilingual corpus and stores it in PostgreSQL.
//
// Flags:
//
//	--corpus          aligned corpus file (overrides trainer config)
//	--trainer-config  path to trainer YAML config file
//	--dry-run         build the table without writing to DB
//	--export          write the table to a file ("-" for stdout)
//	--migrate         apply database migrations before training
//	--list-runs       print stored training runs and exit
//	--show-run        print one stored run and exit
//	--delete-run      delete a stored run with its entries and exit
//	--lookup          print the translations of a target phrase and exit;
//	                  reads --run from the DB, or --table from an exported TSV file
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/phrasetable/internal/adapter/postgres"
	"github.com/heartmarshall/phrasetable/internal/adapter/postgres/phrasetable"
	"github.com/heartmarshall/phrasetable/internal/app"
	"github.com/heartmarshall/phrasetable/internal/app/trainer"
	"github.com/heartmarshall/phrasetable/internal/domain"
)

// Compile-time interface assertion.
var _ trainer.PhraseTableRepo = (*phrasetable.Repo)(nil)

func main() {
	corpusFlag := flag.String("corpus", "", "aligned corpus file (overrides trainer config)")
	trainerConfigFlag := flag.String("trainer-config", "", "path to trainer YAML config file")
	dryRunFlag := flag.Bool("dry-run", false, "build the table without writing to DB")
	exportFlag := flag.String("export", "", `write the table to a file ("-" for stdout)`)
	migrateFlag := flag.Bool("migrate", false, "apply database migrations before training")
	listRunsFlag := flag.Bool("list-runs", false, "print stored training runs and exit")
	showRunFlag := flag.String("show-run", "", "print one stored run and exit")
	deleteRunFlag := flag.String("delete-run", "", "delete a stored run with its entries and exit")
	lookupFlag := flag.String("lookup", "", "print the translations of a target phrase and exit")
	runFlag := flag.String("run", "", "training run ID used by --lookup")
	tableFlag := flag.String("table", "", "exported TSV table used by --lookup instead of the DB")
	flag.Parse()

	appCfg, logger, err := app.Bootstrap("phrasetable")
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	trainerCfg, err := trainer.LoadConfig(*trainerConfigFlag)
	if err != nil {
		logger.Error("load trainer config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CLI flags override config.
	if *corpusFlag != "" {
		trainerCfg.CorpusPath = *corpusFlag
	}
	if *dryRunFlag {
		trainerCfg.DryRun = true
	}
	if *exportFlag != "" {
		trainerCfg.ExportPath = *exportFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Hour)
	defer cancel()

	if *migrateFlag {
		applied, err := postgres.Migrate(ctx, appCfg.Database.DSN, logger)
		if err != nil {
			logger.Error("migrate", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations done", slog.Int("applied", applied))
	}

	if *lookupFlag != "" && *tableFlag != "" {
		entries, err := trainer.LookupFile(*tableFlag, *lookupFlag)
		if err != nil {
			logger.Error("lookup", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := trainer.PrintEntries(os.Stdout, entries); err != nil {
			logger.Error("lookup", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	inspect := *listRunsFlag || *showRunFlag != "" || *deleteRunFlag != "" || *lookupFlag != ""

	var repo *phrasetable.Repo
	if !trainerCfg.DryRun || inspect {
		pool, err := postgres.NewPool(ctx, appCfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		repo = phrasetable.New(pool, postgres.NewTxManager(pool))
	}

	if inspect {
		var err error
		switch {
		case *listRunsFlag:
			err = listRuns(ctx, repo)
		case *showRunFlag != "":
			err = showRun(ctx, repo, *showRunFlag)
		case *deleteRunFlag != "":
			err = deleteRun(ctx, repo, logger, *deleteRunFlag)
		default:
			err = lookup(ctx, repo, *runFlag, *lookupFlag)
		}
		if err != nil {
			logger.Error("inspect", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if err := trainerCfg.Validate(); err != nil {
		logger.Error("invalid trainer config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var pipelineRepo trainer.PhraseTableRepo
	if repo != nil {
		pipelineRepo = repo
	}

	pipeline := trainer.NewPipeline(logger, pipelineRepo, *trainerCfg)
	if err := pipeline.Run(ctx); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if pipeline.HasErrors() {
		logger.Warn("pipeline completed with errors")
		os.Exit(1)
	}

	if run := pipeline.StoredRun(); run != nil {
		logger.Info("pipeline completed successfully", slog.String("run_id", run.ID.String()))
		return
	}
	logger.Info("pipeline completed successfully")
}

func listRuns(ctx context.Context, repo *phrasetable.Repo) error {
	runs, err := repo.ListRuns(ctx, 0)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	return trainer.PrintRuns(os.Stdout, runs)
}

func showRun(ctx context.Context, repo *phrasetable.Repo, rawID string) error {
	id, err := parseRunID(rawID)
	if err != nil {
		return err
	}
	run, err := repo.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("show run: %w", err)
	}
	return trainer.PrintRun(os.Stdout, run)
}

func deleteRun(ctx context.Context, repo *phrasetable.Repo, logger *slog.Logger, rawID string) error {
	id, err := parseRunID(rawID)
	if err != nil {
		return err
	}
	if err := repo.DeleteRun(ctx, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	logger.Info("run deleted", slog.String("run_id", id.String()))
	return nil
}

func lookup(ctx context.Context, repo *phrasetable.Repo, rawID, target string) error {
	id, err := parseRunID(rawID)
	if err != nil {
		return err
	}
	entries, err := repo.Lookup(ctx, id, target)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	return trainer.PrintEntries(os.Stdout, entries)
}

func parseRunID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("run", fmt.Sprintf("invalid run ID %q", raw))
	}
	return id, nil
}
