package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	"github.com/Alia5/markergen/internal/codegen/diag"
	"github.com/Alia5/markergen/internal/codegen/generator"
	"github.com/Alia5/markergen/internal/codegen/model"
	"github.com/Alia5/markergen/internal/log"
)

// PassOptions configures one generation pass. Shared by generate, check and watch.
type PassOptions struct {
	Model    string   `help:"Declaration model file (.yaml, .yml, .toml or .json)" required:"" short:"m" env:"MARKERGEN_MODEL"`
	Output   string   `help:"Directory that receives generated units" default:"./generated" short:"o" env:"MARKERGEN_OUTPUT"`
	Variants []string `help:"Variants to run (autonotify, jsonwrapper); empty runs all" env:"MARKERGEN_VARIANTS"`
	Jobs     int      `help:"Units rendered in parallel (0 uses all CPUs)" default:"0" env:"MARKERGEN_JOBS"`
	Color    string   `help:"Colorize diagnostics" enum:"auto,always,never" default:"auto" env:"MARKERGEN_COLOR"`
}

// errDiagnostics marks a pass that completed but reported errors.
var errDiagnostics = errors.New("generation reported errors")

// pass loads the model, runs the generator and prints diagnostics to
// stderr. The result is returned even when diagnostics contain errors.
func (p *PassOptions) pass(ctx context.Context, logger *slog.Logger, dumper log.UnitDumper) (*generator.Result, error) {
	return p.passTo(ctx, logger, dumper, os.Stderr)
}

func (p *PassOptions) passTo(ctx context.Context, logger *slog.Logger, dumper log.UnitDumper, diagOut io.Writer) (*generator.Result, error) {
	graph, err := model.Load(p.Model)
	if err != nil {
		return nil, err
	}

	gen, err := generator.New(logger,
		generator.WithJobs(p.Jobs),
		generator.WithVariants(p.Variants...))
	if err != nil {
		return nil, err
	}

	res, err := gen.Run(ctx, graph)
	if err != nil {
		return nil, errors.Wrap(err, "generation pass")
	}
	for _, u := range res.Units {
		dumper.Dump(u)
	}

	if err := diag.Pretty(diagOut, res.Diagnostics, diag.PrettyOpts{Color: p.useColor(diagOut)}); err != nil {
		return nil, errors.Wrap(err, "print diagnostics")
	}
	if res.Canceled {
		return res, errors.New("generation interrupted")
	}
	logger.Info("Generation pass complete",
		"units", len(res.Units),
		"diagnostics", len(res.Diagnostics))
	return res, nil
}

func (p *PassOptions) useColor(w io.Writer) bool {
	switch p.Color {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
