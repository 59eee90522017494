package csharp

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Alia5/markergen/internal/codegen/decl"
	"github.com/Alia5/markergen/internal/codegen/writer"
)

const systemObject = "System.Object"

// Header is everything needed to render one type declaration line.
type Header struct {
	Accessibility decl.Accessibility
	Static        bool
	Sealed        bool
	Abstract      bool
	Partial       bool
	Kind          decl.Kind
	Record        bool
	Name          string
	Inherits      []string
}

// String renders "<accessibility> <modifiers> <kind> <name>[ : <list>]".
// Combinations C# has no spelling for are internal faults.
func (h Header) String() (string, error) {
	access, ok := h.Accessibility.Keyword()
	if !ok {
		return "", errors.AssertionFailedf("type %s: no keyword for accessibility %s", h.Name, h.Accessibility)
	}
	kind, err := kindKeyword(h.Kind, h.Record)
	if err != nil {
		return "", errors.Wrapf(err, "type %s", h.Name)
	}

	parts := []string{access}
	if h.Static {
		parts = append(parts, "static")
	}
	if h.Sealed {
		parts = append(parts, "sealed")
	}
	if h.Abstract {
		parts = append(parts, "abstract")
	}
	if h.Partial {
		parts = append(parts, "partial")
	}
	parts = append(parts, kind, h.Name)

	line := strings.Join(parts, " ")
	if len(h.Inherits) > 0 {
		line += " : " + strings.Join(h.Inherits, ", ")
	}
	return line, nil
}

func kindKeyword(k decl.Kind, record bool) (string, error) {
	switch {
	case record && k == decl.KindStruct:
		return "record struct", nil
	case record && k == decl.KindClass:
		return "record", nil
	case !record && k == decl.KindClass:
		return "class", nil
	case !record && k == decl.KindEnum:
		return "enum", nil
	case !record && k == decl.KindInterface:
		return "interface", nil
	case !record && k == decl.KindStruct:
		return "struct", nil
	}
	return "", errors.AssertionFailedf("no declaration keyword for kind %s (record=%t)", k, record)
}

// PartialHeader describes a partial redeclaration of d. inject lists
// interfaces to add after the ones d already implements; duplicates are
// dropped.
func PartialHeader(g decl.Graph, d *decl.Decl, inject ...string) Header {
	var inherits []string
	if base, ok := g.BaseType(d); ok && base != nil && base.ID != systemObject {
		inherits = append(inherits, decl.DisplayID(base.ID))
	}
	implemented := make([]string, 0, len(inject))
	for _, i := range g.AllInterfaces(d) {
		implemented = append(implemented, i.ID)
		inherits = append(inherits, decl.DisplayID(i.ID))
	}
	for _, id := range inject {
		if slices.Contains(implemented, id) {
			continue
		}
		implemented = append(implemented, id)
		inherits = append(inherits, decl.DisplayID(id))
	}

	return Header{
		Accessibility: d.Accessibility,
		Static:        d.Static,
		Sealed:        d.Sealed,
		Abstract:      d.Abstract,
		Partial:       true,
		Kind:          d.Kind,
		Record:        d.Record,
		Name:          d.DisplayName(),
		Inherits:      inherits,
	}
}

// OpenDeclaration writes h and opens its body.
func OpenDeclaration(w *writer.Writer, h Header) (*writer.Scope, error) {
	line, err := h.String()
	if err != nil {
		return nil, err
	}
	return w.Block(line), nil
}

// OpenNamespace opens a namespace block, or returns a nil scope for the
// global namespace. Closing a nil scope is a no-op.
func OpenNamespace(w *writer.Writer, ns string) *writer.Scope {
	if ns == "" {
		return nil
	}
	return w.Block("namespace " + ns)
}

// TypeChain is the list of types enclosing a declaration, outermost first.
type TypeChain []*decl.Decl

// ChainOf returns the types enclosing d, outermost first.
func ChainOf(g decl.Graph, d *decl.Decl) TypeChain {
	chain := decl.ContainingTypes(g, d)
	slices.Reverse(chain)
	return chain
}

// Open writes a partial declaration for every level of the chain, outermost
// first. The returned scopes must be released with writer.CloseAll. On error
// the scopes opened so far are returned so the caller can still release them.
func (c TypeChain) Open(w *writer.Writer, g decl.Graph) ([]*writer.Scope, error) {
	scopes := make([]*writer.Scope, 0, len(c))
	for _, t := range c {
		s, err := OpenDeclaration(w, PartialHeader(g, t))
		if err != nil {
			return scopes, err
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}

// QualifiedName is d's name as referenced from its namespace: enclosing type
// names joined with dots, including type parameters at every level.
func QualifiedName(g decl.Graph, d *decl.Decl) string {
	var parts []string
	for _, t := range ChainOf(g, d) {
		parts = append(parts, t.DisplayName())
	}
	return strings.Join(append(parts, d.DisplayName()), ".")
}
