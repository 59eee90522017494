package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/Alia5/markergen/internal/codegen/output"
	"github.com/Alia5/markergen/internal/log"
)

// Check verifies that the output directory matches a fresh pass, for CI.
type Check struct {
	PassOptions `embed:""`
}

// Run is called by Kong when the check command is executed.
func (c *Check) Run(logger *slog.Logger, dumper log.UnitDumper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.Check(ctx, logger, dumper, os.Stdout)
}

func (c *Check) Check(ctx context.Context, logger *slog.Logger, dumper log.UnitDumper, out io.Writer) error {
	res, err := c.pass(ctx, logger, dumper)
	if err != nil {
		return err
	}

	cmp, err := output.Check(c.Output, res.Units)
	if err != nil {
		return err
	}
	if cmp.UpToDate() {
		fmt.Fprintf(out, "%s is up to date (%d units)\n", c.Output, len(res.Units))
		if res.HasErrors() {
			return errDiagnostics
		}
		return nil
	}

	for _, group := range []struct {
		label string
		names []string
	}{
		{"missing", cmp.Missing},
		{"stale", cmp.Stale},
		{"extra", cmp.Extra},
	} {
		for _, name := range group.names {
			fmt.Fprintf(out, "  %-8s %s\n", group.label, name)
		}
	}
	return errors.WithHint(
		errors.Newf("%s is out of date", c.Output),
		"run 'markergen generate' to update it")
}
