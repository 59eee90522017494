// Package scanner discovers marker-annotated declarations in a declaration
// graph and groups them into generation targets.
package scanner

import (
	"iter"

	"github.com/Alia5/markergen/internal/codegen/decl"
)

// Group is one generation target: an owning type and the marked members
// that belong to it, in discovery order. For type-level markers the group
// has Owner set and no Members.
type Group struct {
	Owner   *decl.Decl
	Members []*decl.Decl
}

// FindMarked yields every declaration whose syntax node is accepted by pred,
// has at least one attribute list, and resolves to a symbol carrying an
// attribute of class marker. The sequence can be ranged over repeatedly.
func FindMarked(g decl.Graph, marker string, pred func(decl.Node) bool) iter.Seq[*decl.Decl] {
	return func(yield func(*decl.Decl) bool) {
		matches := func(n decl.Node) bool {
			return n.AttributeLists > 0 && pred(n)
		}
		for n := range g.Nodes(matches) {
			for _, d := range g.Resolve(n) {
				if !decl.HasAttribute(g, d, marker) {
					continue
				}
				if !yield(d) {
					return
				}
			}
		}
	}
}

// IsFieldDeclaration accepts field declaration nodes.
func IsFieldDeclaration(n decl.Node) bool { return n.Kind == decl.NodeFieldDeclaration }

// IsInterfaceDeclaration accepts interface declaration nodes.
func IsInterfaceDeclaration(n decl.Node) bool { return n.Kind == decl.NodeInterfaceDeclaration }

// GroupByOwner groups decls by containing type. Groups appear in the order
// their owner was first seen; members keep discovery order. Declarations
// whose owner does not resolve to a named type are dropped.
func GroupByOwner(g decl.Graph, decls iter.Seq[*decl.Decl]) []Group {
	index := make(map[string]int)
	var groups []Group
	for d := range decls {
		owner, ok := g.ContainingType(d)
		if !ok || owner == nil || !owner.Kind.IsType() {
			continue
		}
		i, seen := index[owner.ID]
		if !seen {
			i = len(groups)
			index[owner.ID] = i
			groups = append(groups, Group{Owner: owner})
		}
		groups[i].Members = append(groups[i].Members, d)
	}
	return groups
}

// Singletons makes each type declaration in decls its own group, keeping
// discovery order and dropping duplicates and non-types.
func Singletons(decls iter.Seq[*decl.Decl]) []Group {
	seen := make(map[string]bool)
	var groups []Group
	for d := range decls {
		if d == nil || !d.Kind.IsType() || seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		groups = append(groups, Group{Owner: d})
	}
	return groups
}

// Owners returns the set of owner IDs across groups.
func Owners(groups []Group) map[string]bool {
	out := make(map[string]bool, len(groups))
	for _, grp := range groups {
		out[grp.Owner.ID] = true
	}
	return out
}
