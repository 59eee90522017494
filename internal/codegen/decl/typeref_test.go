package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		in       string
		display  string
		shape    TypeShape
		fullName string
	}{
		{in: "int", display: "int", shape: ShapeNamed, fullName: "System.Int32"},
		{in: "System.Int32", display: "int", shape: ShapeNamed, fullName: "System.Int32"},
		{in: "System.DateTime", display: "System.DateTime", shape: ShapeNamed, fullName: "System.DateTime"},
		{in: "string[]", display: "string[]", shape: ShapeArray},
		{in: "int?", display: "int?", shape: ShapeNullable},
		{in: "Demo.Outer+Inner", display: "Demo.Outer.Inner", shape: ShapeNamed, fullName: "Demo.Outer+Inner"},
		{
			in:       "System.Collections.Generic.Dictionary<string, int[]>",
			display:  "System.Collections.Generic.Dictionary<string, int[]>",
			shape:    ShapeNamed,
			fullName: "System.Collections.Generic.Dictionary",
		},
		{in: "List<int?>[]", display: "List<int?>[]", shape: ShapeArray},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ref, err := ParseTypeRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.display, ref.Display())
			assert.Equal(t, tt.shape, ref.Shape)
			if tt.fullName != "" {
				assert.Equal(t, tt.fullName, ref.FullName)
			}
		})
	}
}

func TestParseTypeRefErrors(t *testing.T) {
	for _, in := range []string{"", "List<int", "List<int;>", "int]"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTypeRef(in)
			assert.Error(t, err)
		})
	}
}

func TestDeclDisplayName(t *testing.T) {
	d := &Decl{Name: "Box", TypeParams: []string{"T", "U"}}
	assert.Equal(t, "Box<T, U>", d.DisplayName())
	assert.Equal(t, "Plain", (&Decl{Name: "Plain"}).DisplayName())
}

func TestAttributeNamedString(t *testing.T) {
	a := Attribute{Class: "X", Named: map[string]any{"PropertyName": "Count", "Null": nil, "N": 3}}

	v, ok := a.NamedString("PropertyName")
	assert.True(t, ok)
	assert.Equal(t, "Count", v)

	_, ok = a.NamedString("Null")
	assert.False(t, ok)

	_, ok = a.NamedString("Missing")
	assert.False(t, ok)

	v, ok = a.NamedString("N")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "<unknown>", Location{}.String())
	assert.Equal(t, "a.cs", Location{File: "a.cs"}.String())
	assert.Equal(t, "a.cs:3", Location{File: "a.cs", Line: 3}.String())
	assert.Equal(t, "a.cs:3:7", Location{File: "a.cs", Line: 3, Column: 7}.String())
}
