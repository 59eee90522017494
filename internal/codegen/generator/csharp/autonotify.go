package csharp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Alia5/markergen/internal/codegen/decl"
	"github.com/Alia5/markergen/internal/codegen/diag"
	"github.com/Alia5/markergen/internal/codegen/emit"
	"github.com/Alia5/markergen/internal/codegen/scanner"
	"github.com/Alia5/markergen/internal/codegen/writer"
)

const (
	autoNotifyNamespace = "AutoNotify"
	autoNotifyType      = "AutoNotifyAttribute"
	notifyInterface     = "System.ComponentModel.INotifyPropertyChanged"
	propertyNameArg     = "PropertyName"

	autoNotifyMarker = autoNotifyNamespace + "." + autoNotifyType
)

const autoNotifyAttributeText = `
using System;
namespace AutoNotify
{
    [AttributeUsage(AttributeTargets.Field, Inherited = false, AllowMultiple = false)]
    [System.Diagnostics.Conditional("AutoNotifyGenerator_DEBUG")]
    sealed class AutoNotifyAttribute : Attribute
    {
        public AutoNotifyAttribute()
        {
        }
        public string PropertyName { get; set; }
    }
}
`

// UnableToGenerateName is reported for a marked field whose property name
// would be empty or equal to the field name.
var UnableToGenerateName = diag.Descriptor{
	Code:     "NSG001",
	Title:    "Unable to generate property name.",
	Format:   "Unable to generate property name.",
	Category: "SourceGenerator",
	Severity: diag.SevError,
}

// AutoNotify generates change-notifying properties for fields marked with
// [AutoNotify] and makes their owners implement INotifyPropertyChanged.
type AutoNotify struct{}

var _ Variant = AutoNotify{}

func (AutoNotify) Marker() Marker {
	return Marker{
		Namespace: autoNotifyNamespace,
		TypeName:  autoNotifyType,
		UnitName:  autoNotifyType + ".cs",
		Text:      autoNotifyAttributeText,
	}
}

func (AutoNotify) Required() []string {
	return []string{autoNotifyMarker, notifyInterface, systemObject}
}

func (a AutoNotify) Discover(g decl.Graph) []scanner.Group {
	marker := a.Marker().FullName()
	fields := func(yield func(*decl.Decl) bool) {
		for d := range scanner.FindMarked(g, marker, scanner.IsFieldDeclaration) {
			if d.Kind != decl.KindField {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
	return scanner.GroupByOwner(g, fields)
}

type notifyProperty struct {
	field string
	typ   string
	name  string
}

func (AutoNotify) Render(b *Batch, grp scanner.Group) (emit.Unit, bool, error) {
	g, owner := b.Graph, grp.Owner

	props, invalid := notifyProperties(g, grp)
	for _, f := range invalid {
		b.Reporter.Report(diag.New(UnableToGenerateName, f.Location))
	}
	if len(props) == 0 {
		return emit.Unit{}, false, nil
	}

	capability := NeedsCapability(b, owner)
	var inject []string
	if capability {
		inject = append(inject, notifyInterface)
	}

	w := writer.New()
	ns := OpenNamespace(w, owner.Namespace)
	defer ns.Close()

	chain, err := ChainOf(g, owner).Open(w, g)
	defer writer.CloseAll(chain)
	if err != nil {
		return emit.Unit{}, false, err
	}

	body, err := OpenDeclaration(w, PartialHeader(g, owner, inject...))
	if err != nil {
		return emit.Unit{}, false, err
	}
	if capability {
		writeNotifyImplementation(w)
	}
	for _, p := range props {
		writeNotifyProperty(w, p)
	}
	body.Close()
	writer.CloseAll(chain)
	ns.Close()

	return emit.Unit{Name: owner.Name + "_autoNotify.cs", Text: w.String()}, true, nil
}

// notifyProperties splits the members of grp into derivable properties and
// fields whose property name cannot be derived.
func notifyProperties(g decl.Graph, grp scanner.Group) (props []notifyProperty, invalid []*decl.Decl) {
	for _, f := range grp.Members {
		attr, _ := decl.FindAttribute(g, f, autoNotifyMarker)
		name, ok := PropertyName(f.Name, attr)
		if !ok {
			invalid = append(invalid, f)
			continue
		}
		props = append(props, notifyProperty{field: f.Name, typ: f.Type.Display(), name: name})
	}
	return props, invalid
}

// NeedsCapability reports whether owner must declare the PropertyChanged
// event itself: it does not implement INotifyPropertyChanged yet and no
// base type gains it from this same pass. A base owner whose fields all
// fail name derivation produces no unit and therefore gains nothing.
//
// A base type marked in a separately compiled assembly is not seen here and
// still counts as "not an owner".
func NeedsCapability(b *Batch, owner *decl.Decl) bool {
	for _, iface := range b.Graph.AllInterfaces(owner) {
		if b.Identities.Is(iface, notifyInterface) {
			return false
		}
	}
	for _, base := range decl.BaseTypes(b.Graph, owner) {
		if !b.IsOwner(base) {
			continue
		}
		if grp, ok := b.Group(base); ok {
			if props, _ := notifyProperties(b.Graph, grp); len(props) > 0 {
				return false
			}
		}
	}
	return true
}

// PropertyName derives the generated property name for field. A non-empty
// PropertyName argument on attr wins; otherwise leading underscores are
// trimmed and the first letter upper-cased. ok is false when the result is
// empty or identical to the field name.
func PropertyName(field string, attr decl.Attribute) (name string, ok bool) {
	if override, set := attr.NamedString(propertyNameArg); set && override != "" {
		name = override
	} else {
		name = pascal(strings.TrimLeft(field, "_"))
	}
	if name == "" || name == field {
		return "", false
	}
	return name, true
}

func pascal(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func writeNotifyImplementation(w *writer.Writer) {
	w.WriteLine("public event System.ComponentModel.PropertyChangedEventHandler? PropertyChanged;")
	w.WriteLine(`protected void NotifyPropertyChanged([System.Runtime.CompilerServices.CallerMemberName] string propertyName = "")`)
	expr := w.Indent()
	w.WriteLine("=> PropertyChanged?.Invoke(this, new System.ComponentModel.PropertyChangedEventArgs(propertyName));")
	expr.Close()
}

func writeNotifyProperty(w *writer.Writer, p notifyProperty) {
	w.BlankLine()
	prop := w.Block("public virtual " + p.typ + " " + p.name)
	w.WriteLine("get => this." + p.field + ";")
	set := w.Block("set")
	check := w.Block("if (!System.Collections.Generic.EqualityComparer<" + p.typ + ">.Default.Equals(this." + p.field + ", value))")
	w.WriteLine("this." + p.field + " = value;")
	w.WriteLine("NotifyPropertyChanged(nameof(" + p.name + "));")
	check.Close()
	set.Close()
	prop.Close()
}
