package csharp_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/markergen/internal/codegen/decl"
	"github.com/Alia5/markergen/internal/codegen/generator/csharp"
	gentest "github.com/Alia5/markergen/internal/testing"
)

const autoNotifyMarkerText = `
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

func TestAutoNotifyMarker(t *testing.T) {
	m := csharp.AutoNotify{}.Marker()
	assert.Equal(t, "AutoNotify.AutoNotifyAttribute", m.FullName())
	u := m.Unit()
	assert.Equal(t, "AutoNotifyAttribute.cs", u.Name)
	assert.Equal(t, autoNotifyMarkerText, u.Text)
	assert.True(t, u.Balanced())
	assert.Empty(t, u.Misindented(4))

	d := m.Decl()
	assert.Equal(t, decl.KindClass, d.Kind)
	assert.Equal(t, "AutoNotify", d.Namespace)
	assert.True(t, d.Sealed)
}

func TestAutoNotifyGolden(t *testing.T) {
	g := gentest.LoadGraphFile(t, "testdata/viewmodel.yaml")
	units, diags := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	assert.Empty(t, diags)
	require.Len(t, units, 1)

	want, err := os.ReadFile("testdata/ExampleViewModel_autoNotify.cs.golden")
	require.NoError(t, err)
	assert.Equal(t, "ExampleViewModel_autoNotify.cs", units[0].Name)
	assert.Equal(t, string(want), units[0].Text)
	assert.True(t, units[0].Balanced())
	assert.Empty(t, units[0].Misindented(4))
}

func TestAutoNotifyIdempotent(t *testing.T) {
	first, _ := gentest.RunVariant(t, csharp.AutoNotify{}, gentest.LoadGraphFile(t, "testdata/viewmodel.yaml"))
	second, _ := gentest.RunVariant(t, csharp.AutoNotify{}, gentest.LoadGraphFile(t, "testdata/viewmodel.yaml"))
	assert.Equal(t, first, second)
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		field    string
		override any
		want     string
		ok       bool
	}{
		{field: "_text", want: "Text", ok: true},
		{field: "__count", want: "Count", ok: true},
		{field: "_x", want: "X", ok: true},
		{field: "value", want: "Value", ok: true},
		{field: "_ärger", want: "Ärger", ok: true},
		{field: "_amount", override: "Count", want: "Count", ok: true},
		{field: "_amount", override: "", want: "Amount", ok: true},
		{field: "_", ok: false},
		{field: "___", ok: false},
		{field: "Text", ok: false},
		{field: "_text", override: "_text", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			attr := decl.Attribute{Class: "AutoNotify.AutoNotifyAttribute"}
			if tt.override != nil {
				attr.Named = map[string]any{"PropertyName": tt.override}
			}
			got, ok := csharp.PropertyName(tt.field, attr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutoNotifyInvalidNameSkipsField(t *testing.T) {
	g := gentest.LoadGraph(t, `
types:
  - name: VM
    namespace: Demo
    accessibility: public
    file: VM.cs
    fields:
      - name: _good
        type: string
        line: 3
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
      - name: _
        type: int
        line: 4
        column: 9
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
      - name: _other
        type: bool
        line: 5
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
`)
	units, diags := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	require.Len(t, units, 1)
	require.Len(t, diags, 1)

	assert.Equal(t, "NSG001", diags[0].Code)
	assert.Equal(t, "Unable to generate property name.", diags[0].Message)
	assert.Equal(t, "VM.cs:4:9", diags[0].Location.String())

	text := units[0].Text
	assert.Contains(t, text, "public virtual string Good")
	assert.Contains(t, text, "public virtual bool Other")
	assert.NotContains(t, text, "this._;")
}

func TestAutoNotifyAllNamesInvalid(t *testing.T) {
	g := gentest.LoadGraph(t, `
types:
  - name: VM
    fields:
      - name: Text
        type: string
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
`)
	units, diags := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	assert.Empty(t, units)
	require.Len(t, diags, 1)
	assert.Equal(t, "NSG001", diags[0].Code)
}

func TestAutoNotifyGlobalNamespace(t *testing.T) {
	g := gentest.LoadGraph(t, `
types:
  - name: Plain
    sealed: true
    fields:
      - name: _x
        type: string?
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
`)
	units, _ := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	require.Len(t, units, 1)
	assert.Equal(t, `internal sealed partial class Plain : System.ComponentModel.INotifyPropertyChanged
{
    public event System.ComponentModel.PropertyChangedEventHandler? PropertyChanged;
    protected void NotifyPropertyChanged([System.Runtime.CompilerServices.CallerMemberName] string propertyName = "")
        => PropertyChanged?.Invoke(this, new System.ComponentModel.PropertyChangedEventArgs(propertyName));

    public virtual string? X
    {
        get => this._x;
        set
        {
            if (!System.Collections.Generic.EqualityComparer<string?>.Default.Equals(this._x, value))
            {
                this._x = value;
                NotifyPropertyChanged(nameof(X));
            }
        }
    }
}
`, units[0].Text)
}

func TestAutoNotifyNestedOwner(t *testing.T) {
	g := gentest.LoadGraph(t, `
types:
  - name: Outer
    namespace: Demo
    accessibility: public
    static: true
    types:
      - name: Inner
        kind: record struct
        accessibility: internal
        fields:
          - name: _value
            type: int?
            attributes: [{type: AutoNotify.AutoNotifyAttribute}]
`)
	units, _ := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	require.Len(t, units, 1)
	u := units[0]
	assert.Equal(t, "Inner_autoNotify.cs", u.Name)
	assert.True(t, u.Balanced())
	assert.Empty(t, u.Misindented(4))

	lines := u.Lines()
	assert.Equal(t, "namespace Demo", lines[0])
	assert.Equal(t, "    public static partial class Outer", lines[2])
	assert.Equal(t, "        internal partial record struct Inner : System.ComponentModel.INotifyPropertyChanged", lines[4])
	assert.Equal(t, "            public event System.ComponentModel.PropertyChangedEventHandler? PropertyChanged;", lines[6])
	assert.Contains(t, u.Text, "\n            public virtual int? Value\n")
	assert.Equal(t, []string{"        }", "    }", "}"}, lines[len(lines)-3:])
}

const inheritance = `
types:
  - name: A
    namespace: Demo
    accessibility: public
    fields:
      - name: _a
        type: int
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
  - name: B
    namespace: Demo
    accessibility: public
    base: A
    fields:
      - name: _b
        type: int
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
  - name: C
    namespace: Demo
    accessibility: public
    base: B
    fields:
      - name: _c
        type: int
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
  - name: Notifying
    namespace: Demo
    accessibility: public
    interfaces: [System.ComponentModel.INotifyPropertyChanged]
  - name: D
    namespace: Demo
    accessibility: public
    base: Notifying
    fields:
      - name: _d
        type: int
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
`

func TestAutoNotifyCapabilityDedup(t *testing.T) {
	g := gentest.LoadGraph(t, inheritance)
	units, diags := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	assert.Empty(t, diags)
	require.Len(t, units, 4)

	const event = "public event System.ComponentModel.PropertyChangedEventHandler? PropertyChanged;"
	tests := []struct {
		unit   string
		header string
		event  bool
	}{
		{unit: "A_autoNotify.cs", header: "    public partial class A : System.ComponentModel.INotifyPropertyChanged", event: true},
		{unit: "B_autoNotify.cs", header: "    public partial class B : Demo.A", event: false},
		{unit: "C_autoNotify.cs", header: "    public partial class C : Demo.B", event: false},
		{unit: "D_autoNotify.cs", header: "    public partial class D : Demo.Notifying, System.ComponentModel.INotifyPropertyChanged", event: false},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			u := gentest.UnitNamed(t, units, tt.unit)
			assert.Empty(t, u.Misindented(4))
			assert.Equal(t, tt.header, u.Lines()[2])
			assert.Equal(t, tt.event, strings.Contains(u.Text, event))
			assert.Equal(t, 1, strings.Count(u.Text, "public virtual int "))
		})
	}
}

func TestAutoNotifyCapabilityMovesPastEmptyBase(t *testing.T) {
	g := gentest.LoadGraph(t, `
types:
  - name: A
    namespace: Demo
    accessibility: public
    fields:
      - name: Text
        type: string
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
  - name: B
    namespace: Demo
    accessibility: public
    base: A
    fields:
      - name: _b
        type: int
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
  - name: C
    namespace: Demo
    accessibility: public
    base: B
    fields:
      - name: _c
        type: int
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
`)
	units, diags := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	require.Len(t, diags, 1)
	assert.Equal(t, "NSG001", diags[0].Code)
	require.Len(t, units, 2)

	const event = "public event System.ComponentModel.PropertyChangedEventHandler? PropertyChanged;"
	b := gentest.UnitNamed(t, units, "B_autoNotify.cs")
	assert.Equal(t, "    public partial class B : Demo.A, System.ComponentModel.INotifyPropertyChanged", b.Lines()[2])
	assert.Equal(t, 1, strings.Count(b.Text, event))
	assert.Contains(t, b.Text, "protected void NotifyPropertyChanged(")
	assert.Empty(t, b.Misindented(4))

	c := gentest.UnitNamed(t, units, "C_autoNotify.cs")
	assert.Equal(t, "    public partial class C : Demo.B", c.Lines()[2])
	assert.NotContains(t, c.Text, event)
}

func TestAutoNotifyMultipleVariables(t *testing.T) {
	g := gentest.LoadGraph(t, `
types:
  - name: VM
    namespace: Demo
    fields:
      - names: [_first, _second]
        type: System.Collections.Generic.List<string>
        attributes: [{type: AutoNotify.AutoNotifyAttribute}]
`)
	units, _ := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	require.Len(t, units, 1)
	text := units[0].Text
	assert.Contains(t, text, "public virtual System.Collections.Generic.List<string> First")
	assert.Contains(t, text, "public virtual System.Collections.Generic.List<string> Second")
	assert.Less(t, strings.Index(text, " First"), strings.Index(text, " Second"))
}

func TestAutoNotifyIgnoresOtherAttributes(t *testing.T) {
	g := gentest.LoadGraph(t, `
types:
  - name: VM
    fields:
      - name: _x
        type: int
        attributes: [{type: System.ObsoleteAttribute}]
`)
	units, diags := gentest.RunVariant(t, csharp.AutoNotify{}, g)
	assert.Empty(t, units)
	assert.Empty(t, diags)
}
