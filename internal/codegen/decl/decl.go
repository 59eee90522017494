// Package decl describes the host's declaration graph as seen by the
// generators: immutable declaration snapshots and the read-only queries a
// generation pass needs.
package decl

import (
	"fmt"
	"iter"
	"strings"
)

// Kind is the structural kind of a declaration.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindClass
	KindStruct
	KindInterface
	KindEnum
	KindField
	KindProperty
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindClass:     "class",
	KindStruct:    "struct",
	KindInterface: "interface",
	KindEnum:      "enum",
	KindField:     "field",
	KindProperty:  "property",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsType reports whether k declares a type.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindStruct, KindInterface, KindEnum:
		return true
	}
	return false
}

// ParseKind maps a model keyword to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s && k != KindUnknown {
			return k, true
		}
	}
	return KindUnknown, false
}

// Accessibility is the declared accessibility of a declaration.
type Accessibility uint8

const (
	AccessNotApplicable Accessibility = iota
	AccessPublic
	AccessInternal
	AccessProtected
	AccessPrivate
	AccessPrivateProtected  // protected and internal
	AccessProtectedInternal // protected or internal
)

var accessNames = map[Accessibility]string{
	AccessPublic:            "public",
	AccessInternal:          "internal",
	AccessProtected:         "protected",
	AccessPrivate:           "private",
	AccessPrivateProtected:  "private protected",
	AccessProtectedInternal: "protected internal",
}

// Keyword returns the C# keyword(s) for a, or false for AccessNotApplicable.
func (a Accessibility) Keyword() (string, bool) {
	s, ok := accessNames[a]
	return s, ok
}

func (a Accessibility) String() string {
	if s, ok := accessNames[a]; ok {
		return s
	}
	return "not-applicable"
}

// ParseAccessibility maps a model keyword to an Accessibility.
func ParseAccessibility(s string) (Accessibility, bool) {
	for a, name := range accessNames {
		if name == s {
			return a, true
		}
	}
	return AccessNotApplicable, false
}

// Location points at a declaration in the host's source.
type Location struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (l Location) String() string {
	switch {
	case l.File == "":
		return "<unknown>"
	case l.Line == 0:
		return l.File
	case l.Column == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
}

// Decl is an immutable snapshot of one declaration.
type Decl struct {
	// ID is the fully qualified metadata name. Nested types are joined with
	// '+', members with '.': "Demo.Outer+Inner", "Demo.Outer+Inner._value".
	ID            string
	Kind          Kind
	Name          string
	Namespace     string
	TypeParams    []string
	Record        bool
	Static        bool
	Abstract      bool
	Sealed        bool
	Accessibility Accessibility
	// Type is the declared value type of fields and properties.
	Type      TypeRef
	HasSetter bool
	Location  Location
}

// DisplayName returns the minimally qualified name including type parameters.
func (d *Decl) DisplayName() string {
	if len(d.TypeParams) == 0 {
		return d.Name
	}
	return d.Name + "<" + strings.Join(d.TypeParams, ", ") + ">"
}

// Attribute is one attribute instance attached to a declaration.
type Attribute struct {
	// Class is the fully qualified name of the attribute's resolved type.
	Class string
	Named map[string]any
}

// NamedString returns a named argument as a string. ok is false when the
// argument is absent or null.
func (a Attribute) NamedString(name string) (value string, ok bool) {
	v, found := a.Named[name]
	if !found || v == nil {
		return "", false
	}
	if s, isString := v.(string); isString {
		return s, true
	}
	return fmt.Sprint(v), true
}

// NodeKind classifies syntax nodes.
type NodeKind uint8

const (
	NodeTypeDeclaration NodeKind = iota + 1
	NodeInterfaceDeclaration
	NodeFieldDeclaration
	NodePropertyDeclaration
)

// Node is a syntax-level declaration: what the host can enumerate before
// semantic resolution. A field declaration may declare several variables.
type Node struct {
	Kind           NodeKind
	AttributeLists int
	Location       Location
	Declared       []string
}

// Graph is the read-only fact base a generation pass runs against.
type Graph interface {
	// ResolveWellKnown looks up a type known to the compilation by its
	// fully qualified metadata name.
	ResolveWellKnown(fullName string) (*Decl, bool)
	// Nodes enumerates syntax nodes accepted by pred.
	Nodes(pred func(Node) bool) iter.Seq[Node]
	// Resolve returns the symbols a node declares.
	Resolve(n Node) []*Decl
	Attributes(d *Decl) []Attribute
	// Members lists d's members in declaration order, filtered to kinds
	// when any are given.
	Members(d *Decl, kinds ...Kind) []*Decl
	BaseType(d *Decl) (*Decl, bool)
	ContainingType(d *Decl) (*Decl, bool)
	// AllInterfaces lists every interface d implements, including those
	// inherited from base types and other interfaces, without duplicates.
	AllInterfaces(d *Decl) []*Decl
}

// Definer is implemented by hosts that absorb generated definitions (such as
// marker attribute types) into the graph before discovery runs.
type Definer interface {
	Define(d Decl)
}

// ContainingTypes returns d's enclosing types, innermost first.
func ContainingTypes(g Graph, d *Decl) []*Decl {
	var out []*Decl
	for cur, ok := g.ContainingType(d); ok; cur, ok = g.ContainingType(cur) {
		out = append(out, cur)
	}
	return out
}

// BaseTypes returns d's base types, nearest first.
func BaseTypes(g Graph, d *Decl) []*Decl {
	var out []*Decl
	for cur, ok := g.BaseType(d); ok; cur, ok = g.BaseType(cur) {
		out = append(out, cur)
	}
	return out
}

// HasAttribute reports whether d carries an attribute of class.
func HasAttribute(g Graph, d *Decl, class string) bool {
	for _, a := range g.Attributes(d) {
		if a.Class == class {
			return true
		}
	}
	return false
}

// FindAttribute returns the first attribute of class on d.
func FindAttribute(g Graph, d *Decl, class string) (Attribute, bool) {
	for _, a := range g.Attributes(d) {
		if a.Class == class {
			return a, true
		}
	}
	return Attribute{}, false
}
