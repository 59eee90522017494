package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Alia5/markergen/internal/log"
	"github.com/Alia5/markergen/internal/watch"
)

type Watch struct {
	Generate `embed:""`
	Debounce time.Duration `help:"Quiet period after a change before regenerating" default:"200ms" env:"MARKERGEN_WATCH_DEBOUNCE"`
}

// Run is called by Kong when the watch command is executed.
func (c *Watch) Run(logger *slog.Logger, dumper log.UnitDumper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.Watch(ctx, logger, dumper)
}

// Watch generates once and then again after every change to the model file
// until ctx is done. Failed passes are logged and do not stop watching.
func (c *Watch) Watch(ctx context.Context, logger *slog.Logger, dumper log.UnitDumper) error {
	w, err := watch.New(c.Model, c.Debounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	regenerate := func(ctx context.Context) {
		err := c.Generate.Generate(ctx, logger, dumper)
		switch {
		case err == nil:
		case errors.Is(err, errDiagnostics):
			logger.Warn("Generation reported errors", "model", c.Model)
		case ctx.Err() != nil:
		default:
			logger.Error("Generation failed", "model", c.Model, "error", err)
		}
	}

	regenerate(ctx)
	logger.Info("Watching model for changes", "model", c.Model, "debounce", c.Debounce)
	if err := w.Run(ctx, regenerate); err != nil {
		return err
	}
	logger.Info("Stopped watching", "model", c.Model)
	return nil
}
