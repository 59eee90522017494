package decl

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TypeShape distinguishes named types from the constructed forms wrapping them.
type TypeShape uint8

const (
	ShapeNamed TypeShape = iota
	ShapeArray
	ShapeNullable
)

// TypeRef is a reference to a declared value type.
type TypeRef struct {
	Shape TypeShape
	// FullName is set for named types, e.g. "System.Int32".
	FullName string
	// Args are generic type arguments of a named type.
	Args []TypeRef
	// Elem is the wrapped type of arrays and nullables.
	Elem *TypeRef
}

// keywords maps special types to their C# keyword spelling.
var keywords = map[string]string{
	"System.Boolean": "bool",
	"System.SByte":   "sbyte",
	"System.Byte":    "byte",
	"System.Int16":   "short",
	"System.UInt16":  "ushort",
	"System.Int32":   "int",
	"System.UInt32":  "uint",
	"System.Int64":   "long",
	"System.UInt64":  "ulong",
	"System.Decimal": "decimal",
	"System.Single":  "float",
	"System.Double":  "double",
	"System.String":  "string",
	"System.Char":    "char",
	"System.Object":  "object",
}

var keywordTypes = func() map[string]string {
	m := make(map[string]string, len(keywords))
	for full, kw := range keywords {
		m[kw] = full
	}
	return m
}()

// Named returns a reference to the named type fullName. C# keywords are
// normalized to their metadata names.
func Named(fullName string, args ...TypeRef) TypeRef {
	if full, ok := keywordTypes[fullName]; ok {
		fullName = full
	}
	return TypeRef{Shape: ShapeNamed, FullName: fullName, Args: args}
}

// ArrayOf returns a reference to a single-dimensional array of elem.
func ArrayOf(elem TypeRef) TypeRef { return TypeRef{Shape: ShapeArray, Elem: &elem} }

// NullableOf returns a reference to elem?.
func NullableOf(elem TypeRef) TypeRef { return TypeRef{Shape: ShapeNullable, Elem: &elem} }

// Display renders t the way C# prints fully qualified types, using keywords
// for special types.
func (t TypeRef) Display() string {
	switch t.Shape {
	case ShapeArray:
		return t.Elem.Display() + "[]"
	case ShapeNullable:
		return t.Elem.Display() + "?"
	}
	if len(t.Args) == 0 {
		return DisplayID(t.FullName)
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Display()
	}
	return DisplayID(t.FullName) + "<" + strings.Join(args, ", ") + ">"
}

// DisplayID renders a metadata name in source form: nested type separators
// become dots and special types use their keywords.
func DisplayID(id string) string {
	if kw, ok := keywords[id]; ok {
		return kw
	}
	return strings.ReplaceAll(id, "+", ".")
}

func (t TypeRef) String() string { return t.Display() }

var errEmptyType = errors.New("empty type")

// ParseTypeRef parses C# type syntax such as "int", "string[]", "int?" or
// "System.Collections.Generic.Dictionary<string, int[]>".
func ParseTypeRef(s string) (TypeRef, error) {
	p := typeParser{src: s}
	t, err := p.parse()
	if err != nil {
		return TypeRef{}, errors.Wrapf(err, "parse type %q", s)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeRef{}, errors.Newf("parse type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) parse() (TypeRef, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return TypeRef{}, errEmptyType
	}

	var args []TypeRef
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		p.pos++
		for {
			arg, err := p.parse()
			if err != nil {
				return TypeRef{}, err
			}
			args = append(args, arg)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return TypeRef{}, errors.New("unterminated type argument list")
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == '>' {
				p.pos++
				break
			}
			return TypeRef{}, errors.Newf("unexpected %q in type argument list", p.src[p.pos])
		}
	}

	t := Named(name, args...)
	for {
		p.skipSpace()
		switch {
		case strings.HasPrefix(p.src[p.pos:], "[]"):
			p.pos += 2
			t = ArrayOf(t)
		case strings.HasPrefix(p.src[p.pos:], "?"):
			p.pos++
			t = NullableOf(t)
		default:
			return t, nil
		}
	}
}

func isNameByte(b byte) bool {
	return b == '.' || b == '_' || b == '+' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
