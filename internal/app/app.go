package app

import (
	"log/slog"

	"github.com/heartmarshall/phrasetable/internal/config"
)

// Bootstrap loads the application configuration, installs the default
// logger and logs startup information for the named command.
func Bootstrap(command string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(cfg.Log).With(slog.String("cmd", command))

	logger.Info("starting",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("database", cfg.Database.Configured()),
	)

	return cfg, logger, nil
}
