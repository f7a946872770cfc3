package trainer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

// Export formats.
const (
	FormatTSV  = "tsv"
	FormatYAML = "yaml"
)

// Config holds training pipeline settings.
type Config struct {
	CorpusPath     string  `yaml:"corpus_path"     env:"TRAINER_CORPUS_PATH"`
	Lowercase      bool    `yaml:"lowercase"       env:"TRAINER_LOWERCASE"`
	CountThreshold float64 `yaml:"count_threshold" env:"TRAINER_COUNT_THRESHOLD" env-default:"1"`
	RatioQuotient  float64 `yaml:"ratio_quotient"  env:"TRAINER_RATIO_QUOTIENT"  env-default:"20"`
	Workers        int     `yaml:"workers"         env:"TRAINER_WORKERS"         env-default:"1"`
	ProgressEvery  int     `yaml:"progress_every"  env:"TRAINER_PROGRESS_EVERY"  env-default:"10000"`
	SkipMalformed  bool    `yaml:"skip_malformed"  env:"TRAINER_SKIP_MALFORMED"`
	BatchSize      int     `yaml:"batch_size"      env:"TRAINER_BATCH_SIZE"      env-default:"500"`
	ExportPath     string  `yaml:"export_path"     env:"TRAINER_EXPORT_PATH"`
	ExportFormat   string  `yaml:"export_format"   env:"TRAINER_EXPORT_FORMAT"`
	DryRun         bool    `yaml:"dry_run"         env:"TRAINER_DRY_RUN"`
}

// LoadConfig reads trainer configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("trainer config: file %s not found", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("trainer config: read %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("trainer config: read env: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the pipeline depends on and reports every
// offending field at once. Call it after CLI overrides are applied.
func (c *Config) Validate() error {
	var errs []domain.FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.CorpusPath == "" {
		add("corpus_path", "is required")
	}
	if math.IsNaN(c.CountThreshold) {
		add("count_threshold", "must be a number")
	}
	if math.IsNaN(c.RatioQuotient) || c.RatioQuotient < 1 {
		add("ratio_quotient", "must be >= 1 (got %v)", c.RatioQuotient)
	}
	if c.Workers < 1 {
		add("workers", "must be >= 1 (got %d)", c.Workers)
	}
	if c.ProgressEvery < 0 {
		add("progress_every", "must be >= 0 (got %d)", c.ProgressEvery)
	}
	if c.BatchSize < 1 {
		add("batch_size", "must be >= 1 (got %d)", c.BatchSize)
	}
	if f := strings.ToLower(c.ExportFormat); f != "" && f != FormatTSV && f != FormatYAML {
		add("export_format", "must be %s or %s (got %q)", FormatTSV, FormatYAML, c.ExportFormat)
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Format returns the export format: ExportFormat when set, otherwise
// inferred from the ExportPath extension, defaulting to TSV.
func (c *Config) Format() string {
	if c.ExportFormat != "" {
		return strings.ToLower(c.ExportFormat)
	}
	switch strings.ToLower(filepath.Ext(c.ExportPath)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTSV
	}
}
