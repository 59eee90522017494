package csharp

import (
	"github.com/Alia5/markergen/internal/codegen/decl"
	"github.com/Alia5/markergen/internal/codegen/diag"
	"github.com/Alia5/markergen/internal/codegen/emit"
	"github.com/Alia5/markergen/internal/codegen/meta"
	"github.com/Alia5/markergen/internal/codegen/scanner"
)

// Marker is the attribute type a variant injects into every compilation.
type Marker struct {
	Namespace string
	TypeName  string
	UnitName  string
	Text      string
}

// FullName is the marker's fully qualified metadata name.
func (m Marker) FullName() string { return m.Namespace + "." + m.TypeName }

// Unit is the marker definition source.
func (m Marker) Unit() emit.Unit { return emit.Unit{Name: m.UnitName, Text: m.Text} }

// Decl is the marker type as the host graph should know it once defined.
func (m Marker) Decl() decl.Decl {
	return decl.Decl{
		ID:            m.FullName(),
		Kind:          decl.KindClass,
		Name:          m.TypeName,
		Namespace:     m.Namespace,
		Sealed:        true,
		Accessibility: decl.AccessInternal,
	}
}

// Variant is one marker-driven generator.
type Variant interface {
	Marker() Marker
	// Required lists the well-known types a pass needs. When any is
	// missing the variant produces no output.
	Required() []string
	// Discover returns generation targets in discovery order.
	Discover(g decl.Graph) []scanner.Group
	// Render produces the unit for one group. ok is false when reported
	// diagnostics suppressed the unit; err is set only for internal faults.
	Render(b *Batch, grp scanner.Group) (u emit.Unit, ok bool, err error)
}

// Batch is the read-only state shared by every unit of one variant pass.
type Batch struct {
	Graph      decl.Graph
	Reporter   diag.Reporter
	Identities meta.Identities
	Groups     []scanner.Group

	owners map[string]bool
	index  map[string]int
}

// NewBatch indexes groups for a pass.
func NewBatch(g decl.Graph, r diag.Reporter, ids meta.Identities, groups []scanner.Group) *Batch {
	index := make(map[string]int, len(groups))
	for i, grp := range groups {
		if _, seen := index[grp.Owner.ID]; !seen {
			index[grp.Owner.ID] = i
		}
	}
	return &Batch{
		Graph:      g,
		Reporter:   r,
		Identities: ids,
		Groups:     groups,
		owners:     scanner.Owners(groups),
		index:      index,
	}
}

// IsOwner reports whether d owns a group in this pass.
func (b *Batch) IsOwner(d *decl.Decl) bool { return b.owners[d.ID] }

// Group returns the group owned by d.
func (b *Batch) Group(d *decl.Decl) (scanner.Group, bool) {
	i, ok := b.index[d.ID]
	if !ok {
		return scanner.Group{}, false
	}
	return b.Groups[i], true
}
