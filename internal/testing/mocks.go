package testing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alia5/markergen/internal/codegen/decl"
	"github.com/Alia5/markergen/internal/codegen/diag"
	"github.com/Alia5/markergen/internal/codegen/emit"
	"github.com/Alia5/markergen/internal/codegen/generator"
	"github.com/Alia5/markergen/internal/codegen/generator/csharp"
	"github.com/Alia5/markergen/internal/codegen/meta"
	"github.com/Alia5/markergen/internal/codegen/model"
)

// LoadGraph builds a graph from a YAML model document.
func LoadGraph(t *testing.T, doc string) *model.Graph {
	t.Helper()
	g, err := model.Parse([]byte(doc), model.FormatYAML)
	require.NoError(t, err)
	return g
}

// LoadGraphFile builds a graph from a model file.
func LoadGraphFile(t *testing.T, path string) *model.Graph {
	t.Helper()
	g, err := model.Load(path)
	require.NoError(t, err)
	return g
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RunPass runs a full generation pass and fails the test on internal faults.
func RunPass(t *testing.T, g decl.Graph, opts ...generator.Option) *generator.Result {
	t.Helper()
	gen, err := generator.New(Logger(), opts...)
	require.NoError(t, err)
	res, err := gen.Run(context.Background(), g)
	require.NoError(t, err)
	return res
}

// RunVariant renders every group of v sequentially, defining v's marker in
// g first. It returns the produced units in discovery order.
func RunVariant(t *testing.T, v csharp.Variant, g *model.Graph) ([]emit.Unit, []diag.Diagnostic) {
	t.Helper()
	g.Define(v.Marker().Decl())
	ids, missing := meta.Resolve(g, v.Required())
	require.Empty(t, missing)

	sink := diag.NewSink()
	groups := v.Discover(g)
	b := csharp.NewBatch(g, sink, ids, groups)
	var units []emit.Unit
	for _, grp := range groups {
		u, ok, err := v.Render(b, grp)
		require.NoError(t, err)
		if ok {
			units = append(units, u)
		}
	}
	return units, sink.Sorted()
}

// UnitNamed returns the unit called name.
func UnitNamed(t *testing.T, units []emit.Unit, name string) emit.Unit {
	t.Helper()
	for _, u := range units {
		if u.Name == name {
			return u
		}
	}
	require.Failf(t, "unit not found", "no unit %q", name)
	return emit.Unit{}
}

type readOnlyGraph struct {
	decl.Graph
}

// ReadOnly hides the Define method of g, simulating a host that cannot
// absorb generated marker types.
func ReadOnly(g decl.Graph) decl.Graph {
	return readOnlyGraph{Graph: g}
}
