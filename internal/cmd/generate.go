package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/markergen/internal/codegen/common"
	"github.com/Alia5/markergen/internal/codegen/output"
	"github.com/Alia5/markergen/internal/log"
)

type Generate struct {
	PassOptions `embed:""`
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(logger *slog.Logger, dumper log.UnitDumper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.Generate(ctx, logger, dumper)
}

// Generate runs one pass and writes its units to the output directory.
// Units are written even when diagnostics report errors.
func (c *Generate) Generate(ctx context.Context, logger *slog.Logger, dumper log.UnitDumper) error {
	logger.Info("Starting code generation", "model", c.Model, "output", c.Output)

	res, err := c.pass(ctx, logger, dumper)
	if err != nil {
		return err
	}

	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	written, err := output.Write(c.Output, version, res.Units)
	if err != nil {
		return err
	}
	logger.Info("Wrote units",
		"dir", c.Output,
		"written", len(written.Written),
		"unchanged", len(written.Unchanged),
		"removed", len(written.Removed))

	if res.HasErrors() {
		return errDiagnostics
	}
	return nil
}
