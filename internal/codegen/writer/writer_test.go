package writer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockNesting(t *testing.T) {
	w := New()
	outer := w.Block("namespace Demo")
	inner := w.Block("class Foo")
	w.WriteLine("int x;")
	inner.Close()
	outer.Close()

	want := "namespace Demo\n" +
		"{\n" +
		"    class Foo\n" +
		"    {\n" +
		"        int x;\n" +
		"    }\n" +
		"}\n"
	assert.Equal(t, want, w.String())
	assert.Equal(t, 0, w.Depth())
}

func TestScopeCloseIsIdempotent(t *testing.T) {
	w := New()
	func() {
		s := w.Block("class Foo")
		defer s.Close()
		w.WriteLine("a;")
		s.Close()
	}()

	assert.Equal(t, 1, strings.Count(w.String(), "}"))
	assert.Equal(t, 0, w.Depth())
}

func TestBlankLineIgnoresIndent(t *testing.T) {
	w := New()
	s := w.Block("class Foo")
	w.WriteLine("a;")
	w.BlankLine()
	w.WriteLine("b;")
	s.Close()

	assert.Equal(t, "class Foo\n{\n    a;\n\n    b;\n}\n", w.String())
}

func TestIndentWritesNoBraces(t *testing.T) {
	w := New()
	w.WriteLine("void M()")
	in := w.Indent()
	w.WriteLine("=> N();")
	in.Close()
	w.WriteLine("done")

	assert.Equal(t, "void M()\n    => N();\ndone\n", w.String())
}

func TestCloseAllReleasesInReverse(t *testing.T) {
	w := New()
	var scopes []*Scope
	for _, h := range []string{"a", "b", "c"} {
		scopes = append(scopes, w.Block(h))
	}
	assert.Equal(t, 3, w.Depth())
	CloseAll(scopes)
	assert.Equal(t, 0, w.Depth())

	lines := strings.Split(strings.TrimSuffix(w.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"a", "{",
		"    b", "    {",
		"        c", "        {",
		"        }",
		"    }",
		"}",
	}, lines)
}

func TestNilScopeClose(t *testing.T) {
	var s *Scope
	assert.NotPanics(t, s.Close)
}
