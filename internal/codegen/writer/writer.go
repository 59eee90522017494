// Package writer provides an indentation-tracking text sink for generated
// source. Blocks are opened through scopes so every opening brace is matched
// by exactly one closing brace at the right depth.
package writer

import "strings"

const (
	indentUnit = "    "
	blockOpen  = "{"
	blockClose = "}"
)

// Writer accumulates generated lines in memory.
// A Writer is not safe for concurrent use; each generation unit owns one.
type Writer struct {
	sb     strings.Builder
	indent int
}

// New returns an empty Writer.
func New() *Writer { return &Writer{} }

// WriteLine appends s as one line at the current indentation.
func (w *Writer) WriteLine(s string) {
	for range w.indent {
		w.sb.WriteString(indentUnit)
	}
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

// BlankLine appends an empty line with no indentation, whatever the depth.
func (w *Writer) BlankLine() {
	w.sb.WriteByte('\n')
}

// Block writes header, opens a brace block and returns the scope that closes it.
func (w *Writer) Block(header string) *Scope {
	w.WriteLine(header)
	return w.Begin()
}

// Begin opens a brace block at the current position without a header line.
func (w *Writer) Begin() *Scope {
	w.WriteLine(blockOpen)
	w.indent++
	return &Scope{w: w, closing: blockClose}
}

// Indent increases the indentation without writing braces. Closing the
// returned scope restores the previous depth.
func (w *Writer) Indent() *Scope {
	w.indent++
	return &Scope{w: w}
}

// Depth reports the current indentation level.
func (w *Writer) Depth() int { return w.indent }

// String returns everything written so far.
func (w *Writer) String() string { return w.sb.String() }

// Scope is the release handle for an open block or indent.
type Scope struct {
	w       *Writer
	closing string
	closed  bool
}

// Close dedents and, for brace blocks, writes the closing brace. Only the
// first call has an effect, so a deferred Close may follow an explicit one.
func (s *Scope) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	s.w.indent--
	if s.closing != "" {
		s.w.WriteLine(s.closing)
	}
}

// CloseAll closes scopes in reverse order of the slice.
func CloseAll(scopes []*Scope) {
	for i := len(scopes) - 1; i >= 0; i-- {
		scopes[i].Close()
	}
}
