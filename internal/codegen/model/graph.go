package model

import (
	"iter"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/Alia5/markergen/internal/codegen/decl"
)

const rootObject = "System.Object"

// Graph is an in-memory decl.Graph. It is safe for concurrent readers;
// Define may be called while no pass is running.
type Graph struct {
	mu sync.RWMutex

	symbols    map[string]*decl.Decl
	nodes      []decl.Node
	members    map[string][]*decl.Decl
	containing map[string]*decl.Decl
	base       map[string]*decl.Decl
	interfaces map[string][]*decl.Decl
	attributes map[string][]decl.Attribute
}

var (
	_ decl.Graph   = (*Graph)(nil)
	_ decl.Definer = (*Graph)(nil)
)

func newGraph() *Graph {
	return &Graph{
		symbols:    make(map[string]*decl.Decl),
		members:    make(map[string][]*decl.Decl),
		containing: make(map[string]*decl.Decl),
		base:       make(map[string]*decl.Decl),
		interfaces: make(map[string][]*decl.Decl),
		attributes: make(map[string][]decl.Attribute),
	}
}

func (g *Graph) ResolveWellKnown(fullName string) (*decl.Decl, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.symbols[fullName]
	if !ok || !d.Kind.IsType() {
		return nil, false
	}
	return d, true
}

func (g *Graph) Nodes(pred func(decl.Node) bool) iter.Seq[decl.Node] {
	return func(yield func(decl.Node) bool) {
		for _, n := range g.nodes {
			if pred != nil && !pred(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

func (g *Graph) Resolve(n decl.Node) []*decl.Decl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*decl.Decl, 0, len(n.Declared))
	for _, id := range n.Declared {
		if d, ok := g.symbols[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (g *Graph) Attributes(d *decl.Decl) []decl.Attribute {
	return g.attributes[d.ID]
}

func (g *Graph) Members(d *decl.Decl, kinds ...decl.Kind) []*decl.Decl {
	all := g.members[d.ID]
	if len(kinds) == 0 {
		return all
	}
	var out []*decl.Decl
	for _, m := range all {
		for _, k := range kinds {
			if m.Kind == k {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func (g *Graph) BaseType(d *decl.Decl) (*decl.Decl, bool) {
	b, ok := g.base[d.ID]
	return b, ok
}

func (g *Graph) ContainingType(d *decl.Decl) (*decl.Decl, bool) {
	c, ok := g.containing[d.ID]
	return c, ok
}

func (g *Graph) AllInterfaces(d *decl.Decl) []*decl.Decl {
	seen := make(map[string]bool)
	var out []*decl.Decl
	var visit func(t *decl.Decl)
	visit = func(t *decl.Decl) {
		for _, i := range g.interfaces[t.ID] {
			if seen[i.ID] {
				continue
			}
			seen[i.ID] = true
			out = append(out, i)
			visit(i)
		}
		if b, ok := g.base[t.ID]; ok {
			visit(b)
		}
	}
	visit(d)
	return out
}

// Define registers a type produced by generation, such as a marker
// attribute. An existing symbol with the same ID is kept.
func (g *Graph) Define(d decl.Decl) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.symbols[d.ID]; exists {
		return
	}
	g.symbols[d.ID] = &d
}

// Build turns a document into a graph, validating names, kinds and types.
func Build(doc *Document) (*Graph, error) {
	b := &builder{g: newGraph(), refs: make(map[string]bool)}

	refs := doc.References
	if !doc.Standalone {
		refs = append(append([]ReferenceSpec{}, DefaultReferences...), refs...)
	}
	for _, r := range refs {
		if err := b.addReference(r); err != nil {
			return nil, err
		}
	}

	for i := range doc.Types {
		if err := b.declareType(&doc.Types[i], nil, doc.Types[i].Namespace, doc.Types[i].File); err != nil {
			return nil, err
		}
	}
	for _, p := range b.pending {
		if err := b.link(p); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

type pendingType struct {
	d    *decl.Decl
	spec *TypeSpec
}

type builder struct {
	g *Graph
	// refs holds reference IDs a source declaration may still replace.
	refs    map[string]bool
	pending []pendingType
}

func (b *builder) addReference(r ReferenceSpec) error {
	if r.Name == "" {
		return errors.New("reference without name")
	}
	kind := decl.KindClass
	if r.Kind != "" {
		k, ok := decl.ParseKind(r.Kind)
		if !ok || !k.IsType() {
			return errors.Newf("reference %s: unknown kind %q", r.Name, r.Kind)
		}
		kind = k
	}
	if _, dup := b.g.symbols[r.Name]; dup {
		return nil
	}
	ns, name := splitQualified(r.Name)
	b.refs[r.Name] = true
	b.g.symbols[r.Name] = &decl.Decl{
		ID:            r.Name,
		Kind:          kind,
		Name:          name,
		Namespace:     ns,
		Accessibility: decl.AccessPublic,
	}
	return nil
}

func (b *builder) declareType(spec *TypeSpec, parent *decl.Decl, namespace, file string) error {
	if spec.Name == "" {
		return errors.New("type without name")
	}
	if spec.File != "" {
		file = spec.File
	}

	id := spec.Name
	if parent != nil {
		id = parent.ID + "+" + spec.Name
	} else if namespace != "" {
		id = namespace + "." + spec.Name
	}
	if _, dup := b.g.symbols[id]; dup && !b.refs[id] {
		return errors.Newf("duplicate declaration %s", id)
	}
	delete(b.refs, id)

	kind, record, err := typeKind(spec)
	if err != nil {
		return errors.Wrapf(err, "type %s", id)
	}
	access, err := accessibility(spec.Accessibility, defaultTypeAccess(parent))
	if err != nil {
		return errors.Wrapf(err, "type %s", id)
	}

	loc := decl.Location{File: file, Line: spec.Line, Column: spec.Column}
	d := &decl.Decl{
		ID:            id,
		Kind:          kind,
		Name:          spec.Name,
		Namespace:     namespace,
		TypeParams:    spec.TypeParams,
		Record:        record,
		Static:        spec.Static,
		Abstract:      spec.Abstract,
		Sealed:        spec.Sealed,
		Accessibility: access,
		Location:      loc,
	}
	b.g.symbols[id] = d
	if parent != nil {
		b.g.containing[id] = parent
		b.g.members[parent.ID] = append(b.g.members[parent.ID], d)
	}
	attrs, err := attributes(spec.Attributes)
	if err != nil {
		return errors.Wrapf(err, "type %s", id)
	}
	b.g.attributes[id] = attrs

	nodeKind := decl.NodeTypeDeclaration
	if kind == decl.KindInterface {
		nodeKind = decl.NodeInterfaceDeclaration
	}
	b.g.nodes = append(b.g.nodes, decl.Node{
		Kind:           nodeKind,
		AttributeLists: len(spec.Attributes),
		Location:       loc,
		Declared:       []string{id},
	})

	for _, f := range spec.Fields {
		if err := b.declareMember(d, f, decl.KindField, file); err != nil {
			return err
		}
	}
	for _, p := range spec.Properties {
		if err := b.declareMember(d, p, decl.KindProperty, file); err != nil {
			return err
		}
	}

	b.pending = append(b.pending, pendingType{d: d, spec: spec})

	for i := range spec.Types {
		nested := &spec.Types[i]
		if err := b.declareType(nested, d, namespace, file); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) declareMember(owner *decl.Decl, spec MemberSpec, kind decl.Kind, file string) error {
	names := spec.Names
	if spec.Name != "" {
		names = append([]string{spec.Name}, names...)
	}
	if len(names) == 0 {
		return errors.Newf("%s in %s without name", kind, owner.ID)
	}
	if spec.Type == "" {
		return errors.Newf("%s %s.%s without type", kind, owner.ID, names[0])
	}
	typ, err := decl.ParseTypeRef(spec.Type)
	if err != nil {
		return errors.Wrapf(err, "%s %s.%s", kind, owner.ID, names[0])
	}
	def := decl.AccessPrivate
	if owner.Kind == decl.KindInterface {
		def = decl.AccessPublic
	}
	access, err := accessibility(spec.Accessibility, def)
	if err != nil {
		return errors.Wrapf(err, "%s %s.%s", kind, owner.ID, names[0])
	}
	attrs, err := attributes(spec.Attributes)
	if err != nil {
		return errors.Wrapf(err, "%s %s.%s", kind, owner.ID, names[0])
	}
	if spec.File != "" {
		file = spec.File
	}
	loc := decl.Location{File: file, Line: spec.Line, Column: spec.Column}

	nodeKind := decl.NodeFieldDeclaration
	if kind == decl.KindProperty {
		nodeKind = decl.NodePropertyDeclaration
	}
	node := decl.Node{Kind: nodeKind, AttributeLists: len(spec.Attributes), Location: loc}

	for _, name := range names {
		id := owner.ID + "." + name
		if _, dup := b.g.symbols[id]; dup {
			return errors.Newf("duplicate declaration %s", id)
		}
		m := &decl.Decl{
			ID:            id,
			Kind:          kind,
			Name:          name,
			Namespace:     owner.Namespace,
			Static:        spec.Static,
			Accessibility: access,
			Type:          typ,
			HasSetter:     spec.Setter,
			Location:      loc,
		}
		b.g.symbols[id] = m
		b.g.containing[id] = owner
		b.g.members[owner.ID] = append(b.g.members[owner.ID], m)
		b.g.attributes[id] = attrs
		node.Declared = append(node.Declared, id)
	}
	b.g.nodes = append(b.g.nodes, node)
	return nil
}

// link resolves base types and interfaces once every type is declared.
func (b *builder) link(p pendingType) error {
	d, spec := p.d, p.spec
	if spec.Base != "" {
		if d.Kind != decl.KindClass {
			return errors.Newf("type %s: only classes can declare a base type", d.ID)
		}
		base := b.lookup(spec.Base, d, decl.KindClass)
		if base.Kind != decl.KindClass {
			return errors.Newf("type %s: base %s is a %s", d.ID, base.ID, base.Kind)
		}
		b.g.base[d.ID] = base
	} else if d.Kind == decl.KindClass {
		if root, ok := b.g.symbols[rootObject]; ok && d.ID != rootObject {
			b.g.base[d.ID] = root
		}
	}
	for _, name := range spec.Interfaces {
		iface := b.lookup(name, d, decl.KindInterface)
		if iface.Kind != decl.KindInterface {
			return errors.Newf("type %s: %s is not an interface", d.ID, iface.ID)
		}
		b.g.interfaces[d.ID] = append(b.g.interfaces[d.ID], iface)
	}
	return nil
}

// lookup resolves a type name as written in the model: fully qualified,
// relative to the declaring type's namespace, or relative to an enclosing
// type. Unknown names become external references of the expected kind.
func (b *builder) lookup(name string, from *decl.Decl, kind decl.Kind) *decl.Decl {
	var candidates []string
	for cur := b.g.containing[from.ID]; cur != nil; cur = b.g.containing[cur.ID] {
		candidates = append(candidates, cur.ID+"+"+name)
	}
	if from.Namespace != "" {
		candidates = append(candidates, from.Namespace+"."+name)
	}
	candidates = append(candidates, name)
	for _, c := range candidates {
		if d, ok := b.g.symbols[c]; ok && d.Kind.IsType() {
			return d
		}
	}
	ns, simple := splitQualified(name)
	ext := &decl.Decl{
		ID:            name,
		Kind:          kind,
		Name:          simple,
		Namespace:     ns,
		Accessibility: decl.AccessPublic,
	}
	b.g.symbols[name] = ext
	return ext
}

func typeKind(spec *TypeSpec) (decl.Kind, bool, error) {
	switch spec.Kind {
	case "", "class":
		return decl.KindClass, spec.Record, nil
	case "record":
		return decl.KindClass, true, nil
	case "record struct":
		return decl.KindStruct, true, nil
	}
	k, ok := decl.ParseKind(spec.Kind)
	if !ok || !k.IsType() {
		return decl.KindUnknown, false, errors.Newf("unknown kind %q", spec.Kind)
	}
	return k, spec.Record, nil
}

func defaultTypeAccess(parent *decl.Decl) decl.Accessibility {
	if parent != nil {
		return decl.AccessPrivate
	}
	return decl.AccessInternal
}

func accessibility(s string, def decl.Accessibility) (decl.Accessibility, error) {
	if s == "" {
		return def, nil
	}
	a, ok := decl.ParseAccessibility(s)
	if !ok {
		return decl.AccessNotApplicable, errors.Newf("unknown accessibility %q", s)
	}
	return a, nil
}

func attributes(specs []AttributeSpec) ([]decl.Attribute, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]decl.Attribute, 0, len(specs))
	for _, s := range specs {
		if s.Type == "" {
			return nil, errors.New("attribute without type")
		}
		out = append(out, decl.Attribute{Class: s.Type, Named: s.Args})
	}
	return out, nil
}

func splitQualified(name string) (namespace, simple string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' || name[i] == '+' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}
