package generator

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Alia5/markergen/internal/codegen/decl"
	"github.com/Alia5/markergen/internal/codegen/diag"
	"github.com/Alia5/markergen/internal/codegen/emit"
	"github.com/Alia5/markergen/internal/codegen/generator/csharp"
	"github.com/Alia5/markergen/internal/codegen/meta"
)

type Generator struct {
	logger   *slog.Logger
	jobs     int
	variants []string
}

var variants = map[string]csharp.Variant{
	"autonotify":  csharp.AutoNotify{},
	"jsonwrapper": csharp.JSONWrapper{},
}

// variantOrder fixes the order units are reported in.
var variantOrder = []string{"autonotify", "jsonwrapper"}

// Variants lists the supported variant names in output order.
func Variants() []string {
	return append([]string(nil), variantOrder...)
}

type Option func(*Generator)

// WithJobs bounds how many units render concurrently. n <= 0 uses GOMAXPROCS.
func WithJobs(n int) Option {
	return func(g *Generator) { g.jobs = n }
}

// WithVariants restricts the pass to the named variants. Empty means all.
func WithVariants(names ...string) Option {
	return func(g *Generator) { g.variants = names }
}

func New(logger *slog.Logger, opts ...Option) (*Generator, error) {
	g := &Generator{logger: logger}
	for _, o := range opts {
		o(g)
	}
	if g.jobs <= 0 {
		g.jobs = runtime.GOMAXPROCS(0)
	}

	if len(g.variants) == 0 {
		g.variants = Variants()
		return g, nil
	}
	selected := make(map[string]bool, len(g.variants))
	for _, name := range g.variants {
		if _, ok := variants[name]; !ok {
			return nil, errors.WithHintf(
				errors.Newf("unsupported variant '%s'", name),
				"supported: %v", variantOrder)
		}
		selected[name] = true
	}
	g.variants = g.variants[:0]
	for _, name := range variantOrder {
		if selected[name] {
			g.variants = append(g.variants, name)
		}
	}
	return g, nil
}

// Result is the output of one pass.
type Result struct {
	Units       []emit.Unit
	Diagnostics []diag.Diagnostic
	// Canceled is set when ctx ended the pass early. Units holds everything
	// rendered before that.
	Canceled bool
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Run performs one generation pass over graph. Recoverable problems end up
// in Result.Diagnostics; the returned error is reserved for internal faults.
func (g *Generator) Run(ctx context.Context, graph decl.Graph) (*Result, error) {
	sink := diag.NewSink()
	res := &Result{}

	definer, canDefine := graph.(decl.Definer)
	for _, name := range g.variants {
		m := variants[name].Marker()
		res.Units = append(res.Units, m.Unit())
		if canDefine {
			definer.Define(m.Decl())
		}
		g.logger.Debug("Registered marker", "variant", name, "marker", m.FullName())
	}

	for _, name := range g.variants {
		units, canceled, err := g.runVariant(ctx, name, variants[name], graph, sink)
		if err != nil {
			return nil, err
		}
		res.Units = append(res.Units, units...)
		if canceled {
			res.Canceled = true
			g.logger.Warn("Generation canceled", "variant", name, "units", len(res.Units))
			break
		}
	}

	if err := checkUnique(res.Units); err != nil {
		return nil, err
	}
	res.Diagnostics = sink.Sorted()
	return res, nil
}

func (g *Generator) runVariant(
	ctx context.Context,
	name string,
	v csharp.Variant,
	graph decl.Graph,
	sink *diag.Sink,
) ([]emit.Unit, bool, error) {
	ids, missing := meta.Resolve(graph, v.Required())
	if len(missing) > 0 {
		g.logger.Debug("Skipping variant, required types unknown", "variant", name, "missing", missing)
		return nil, false, nil
	}

	groups := v.Discover(graph)
	g.logger.Info("Generating", "variant", name, "targets", len(groups))
	if len(groups) == 0 {
		return nil, false, nil
	}

	batch := csharp.NewBatch(graph, sink, ids, groups)
	units := make([]emit.Unit, len(groups))
	produced := make([]bool, len(groups))
	var canceled atomic.Bool

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.jobs)
	for i, grp := range groups {
		eg.Go(func() error {
			if ctx.Err() != nil {
				canceled.Store(true)
				return nil
			}
			if egctx.Err() != nil {
				return nil
			}
			u, ok, err := v.Render(batch, grp)
			if err != nil {
				return errors.Wrapf(err, "render %s unit for %s", name, grp.Owner.ID)
			}
			units[i], produced[i] = u, ok
			if ok {
				g.logger.Debug("Rendered unit", "variant", name, "unit", u.Name, "bytes", len(u.Text))
			} else {
				g.logger.Debug("Unit suppressed by diagnostics", "variant", name, "owner", grp.Owner.ID)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, false, err
	}

	out := make([]emit.Unit, 0, len(groups))
	for i, u := range units {
		if produced[i] {
			out = append(out, u)
		}
	}
	return out, canceled.Load(), nil
}

func checkUnique(units []emit.Unit) error {
	seen := make(map[string]int, len(units))
	for _, u := range units {
		seen[u.Name]++
	}
	var dups []string
	for name, n := range seen {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return errors.AssertionFailedf("duplicate unit names: %v", dups)
}
