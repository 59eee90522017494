package csharp

import (
	"github.com/Alia5/markergen/internal/codegen/decl"
	"github.com/Alia5/markergen/internal/codegen/diag"
	"github.com/Alia5/markergen/internal/codegen/emit"
	"github.com/Alia5/markergen/internal/codegen/scanner"
	"github.com/Alia5/markergen/internal/codegen/writer"
)

const (
	jsonWrapperNamespace = "JsonElementWrapper"
	jsonWrapperType      = "JsonElementWrapperAttribute"
	jsonElement          = "System.Text.Json.JsonElement"
)

const jsonWrapperAttributeText = `
using System;
namespace JsonElementWrapper
{
    [AttributeUsage(AttributeTargets.Interface, Inherited = false, AllowMultiple = false)]
    [System.Diagnostics.Conditional("JsonElementWrapper_DEBUG")]
    sealed class JsonElementWrapperAttribute : Attribute
    {
        public JsonElementWrapperAttribute()
        {
        }
    }
}
`

var (
	// UnsupportedPropertyType is reported for a wrapped property whose type
	// has no JsonElement extraction method.
	UnsupportedPropertyType = diag.Descriptor{
		Code:     "NSG002",
		Title:    "Unsupported property type.",
		Format:   "Unsupported property type '%s'.",
		Category: "SourceGenerator",
		Severity: diag.SevError,
	}
	// WritableProperty is reported for a wrapped property with a setter.
	WritableProperty = diag.Descriptor{
		Code:     "NSG003",
		Title:    "Wrapped property must be read-only.",
		Format:   "Property '%s' must be read-only to be wrapped.",
		Category: "SourceGenerator",
		Severity: diag.SevError,
	}
)

// Extraction returns the JsonElement method that reads a value of type t.
// ok is false for every type outside the primitive table, including arrays,
// nullables, generics and other interfaces.
func Extraction(t decl.TypeRef) (method string, ok bool) {
	if t.Shape != decl.ShapeNamed || len(t.Args) > 0 {
		return "", false
	}
	switch t.FullName {
	case "System.Boolean":
		return "GetBoolean", true
	case "System.SByte":
		return "GetSByte", true
	case "System.Byte":
		return "GetByte", true
	case "System.Int16":
		return "GetInt16", true
	case "System.UInt16":
		return "GetUInt16", true
	case "System.Int32":
		return "GetInt32", true
	case "System.UInt32":
		return "GetUInt32", true
	case "System.Int64":
		return "GetInt64", true
	case "System.UInt64":
		return "GetUInt64", true
	case "System.Decimal":
		return "GetDecimal", true
	case "System.Single":
		return "GetSingle", true
	case "System.Double":
		return "GetDouble", true
	case "System.String":
		return "GetString", true
	case "System.DateTime":
		return "GetDateTime", true
	default:
		return "", false
	}
}

// JSONWrapper generates JsonElement-backed implementations of interfaces
// marked with [JsonElementWrapper].
type JSONWrapper struct{}

var _ Variant = JSONWrapper{}

func (JSONWrapper) Marker() Marker {
	return Marker{
		Namespace: jsonWrapperNamespace,
		TypeName:  jsonWrapperType,
		UnitName:  jsonWrapperNamespace + ".cs",
		Text:      jsonWrapperAttributeText,
	}
}

func (JSONWrapper) Required() []string {
	return []string{jsonWrapperNamespace + "." + jsonWrapperType, jsonElement}
}

func (j JSONWrapper) Discover(g decl.Graph) []scanner.Group {
	marker := j.Marker().FullName()
	ifaces := func(yield func(*decl.Decl) bool) {
		for d := range scanner.FindMarked(g, marker, scanner.IsInterfaceDeclaration) {
			if d.Kind != decl.KindInterface {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
	return scanner.Singletons(ifaces)
}

type wrappedProperty struct {
	name    string
	typ     string
	extract string
}

func (JSONWrapper) Render(b *Batch, grp scanner.Group) (emit.Unit, bool, error) {
	g, iface := b.Graph, grp.Owner

	var props []wrappedProperty
	for _, p := range wrappedProperties(g, iface) {
		if p.HasSetter {
			b.Reporter.Report(diag.New(WritableProperty, p.Location, p.Name))
			return emit.Unit{}, false, nil
		}
		method, ok := Extraction(p.Type)
		if !ok {
			b.Reporter.Report(diag.New(UnsupportedPropertyType, p.Location, p.Type.Display()))
			return emit.Unit{}, false, nil
		}
		props = append(props, wrappedProperty{name: p.Name, typ: p.Type.Display(), extract: method})
	}

	ref := QualifiedName(g, iface)
	typeArgs := ""
	if len(iface.TypeParams) > 0 {
		typeArgs = iface.DisplayName()[len(iface.Name):]
	}
	wrapper := iface.Name + "_JsonWrapper"

	extAccess := decl.AccessPublic
	if !publiclyVisible(g, iface) {
		extAccess = decl.AccessInternal
	}

	w := writer.New()
	ns := OpenNamespace(w, iface.Namespace)
	defer ns.Close()

	ext, err := OpenDeclaration(w, Header{
		Accessibility: extAccess,
		Static:        true,
		Kind:          decl.KindClass,
		Name:          iface.Name + "_JsonWrapperExtensions",
	})
	if err != nil {
		return emit.Unit{}, false, err
	}
	as := w.Block("public static " + ref + " As" + iface.Name + typeArgs + "(this " + jsonElement + " element)")
	w.WriteLine("return new " + wrapper + typeArgs + "(element);")
	as.Close()
	ext.Close()

	w.BlankLine()
	impl, err := OpenDeclaration(w, Header{
		Accessibility: decl.AccessInternal,
		Kind:          decl.KindClass,
		Name:          wrapper + typeArgs,
		Inherits:      []string{ref},
	})
	if err != nil {
		return emit.Unit{}, false, err
	}
	w.WriteLine("private readonly " + jsonElement + " _element;")
	w.BlankLine()
	ctor := w.Block("public " + wrapper + "(" + jsonElement + " element)")
	w.WriteLine("_element = element;")
	ctor.Close()
	for _, p := range props {
		writeWrappedProperty(w, p)
	}
	impl.Close()
	ns.Close()

	return emit.Unit{Name: iface.Name + "_JsonElementWrapper.cs", Text: w.String()}, true, nil
}

// wrappedProperties lists iface's own properties in declaration order
// followed by those of the interfaces it extends. A name already seen is
// skipped.
func wrappedProperties(g decl.Graph, iface *decl.Decl) []*decl.Decl {
	seen := make(map[string]bool)
	var out []*decl.Decl
	add := func(t *decl.Decl) {
		for _, p := range g.Members(t, decl.KindProperty) {
			if p.Static || seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	add(iface)
	for _, base := range g.AllInterfaces(iface) {
		add(base)
	}
	return out
}

// publiclyVisible reports whether d and every type enclosing it is public.
func publiclyVisible(g decl.Graph, d *decl.Decl) bool {
	if d.Accessibility != decl.AccessPublic {
		return false
	}
	for _, t := range decl.ContainingTypes(g, d) {
		if t.Accessibility != decl.AccessPublic {
			return false
		}
	}
	return true
}

func writeWrappedProperty(w *writer.Writer, p wrappedProperty) {
	w.BlankLine()
	prop := w.Block("public " + p.typ + " " + p.name)
	get := w.Block("get")
	w.WriteLine(`return _element.GetProperty("` + p.name + `").` + p.extract + "();")
	get.Close()
	prop.Close()
}
