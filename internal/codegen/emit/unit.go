// Package emit defines the generated output handed back to the host.
package emit

import "strings"

// Unit is one complete, independently named block of generated source.
type Unit struct {
	Name string
	Text string
}

// Balanced reports whether every opening brace in the unit is closed in
// order. Braces inside string literals are ignored.
func (u Unit) Balanced() bool {
	depth := 0
	inString := false
	for i := 0; i < len(u.Text); i++ {
		c := u.Text[i]
		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !inString
}

// Misindented returns the 1-based numbers of lines whose leading spaces
// do not equal width times their brace depth. A closing brace belongs to the
// outer level; a line starting with "=>" continues the previous line one level
// deeper. Blank lines must be empty.
func (u Unit) Misindented(width int) []int {
	var bad []int
	depth := 0
	for i, line := range u.Lines() {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			if line != "" {
				bad = append(bad, i+1)
			}
			continue
		}
		want := depth
		switch {
		case strings.HasPrefix(trimmed, "}"):
			want--
		case strings.HasPrefix(trimmed, "=>"):
			want++
		}
		if len(line)-len(trimmed) != want*width {
			bad = append(bad, i+1)
		}
		depth += braceDelta(trimmed)
	}
	return bad
}

func braceDelta(line string) int {
	delta := 0
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			delta++
		case c == '}':
			delta--
		}
	}
	return delta
}

// Lines splits the unit text into lines without the trailing terminator.
func (u Unit) Lines() []string {
	return strings.Split(strings.TrimSuffix(u.Text, "\n"), "\n")
}
