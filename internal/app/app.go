package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *config.Config
}

// NewApp constructs the application: it builds an isolated logger and
// loads the project configuration through the given loader. Logs go to
// errW so task output on outW stays clean for piping.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.Level(), appConfig.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfg, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded into unified model.", "project", cfg.ProjectName)

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		config: cfg,
	}, nil
}

// Project returns the loaded project configuration. This is primarily
// for testing.
func (a *App) Project() *config.Config {
	return a.config
}
