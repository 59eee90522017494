package meta

import (
	"sort"

	"github.com/Alia5/markergen/internal/codegen/decl"
)

// Identities holds the well-known declarations a variant resolved for one
// pass, keyed by fully qualified name.
// Shared between the generator orchestrator and the variant renderers.
type Identities map[string]*decl.Decl

// Resolve looks up every name in g. missing lists the names the host does
// not know, sorted.
func Resolve(g decl.Graph, names []string) (ids Identities, missing []string) {
	ids = make(Identities, len(names))
	for _, n := range names {
		d, ok := g.ResolveWellKnown(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		ids[n] = d
	}
	sort.Strings(missing)
	return ids, missing
}

// Is reports whether d is the identity registered under name.
func (ids Identities) Is(d *decl.Decl, name string) bool {
	known, ok := ids[name]
	return ok && d != nil && known.ID == d.ID
}
