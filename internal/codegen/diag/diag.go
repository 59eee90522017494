// Package diag collects diagnostics produced during a generation pass.
//
// Diagnostics are reported, never returned as errors: a failing member or
// interface is skipped while sibling units continue to generate.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Alia5/markergen/internal/codegen/decl"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// Descriptor is the stable identity of a class of diagnostics.
type Descriptor struct {
	Code     string
	Title    string
	Format   string
	Category string
	Severity Severity
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Code     string        `json:"code"`
	Severity Severity      `json:"severity"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Location decl.Location `json:"location"`
}

// New instantiates a descriptor at loc, formatting its message with args.
func New(d Descriptor, loc decl.Location, args ...any) Diagnostic {
	msg := d.Format
	if len(args) > 0 {
		msg = fmt.Sprintf(d.Format, args...)
	}
	return Diagnostic{
		Code:     d.Code,
		Severity: d.Severity,
		Title:    d.Title,
		Message:  msg,
		Location: loc,
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Code, d.Message)
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// Sink is an append-only, concurrency-safe Reporter.
type Sink struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

func (s *Sink) Report(d Diagnostic) {
	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Len reports how many diagnostics were collected.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// HasErrors reports whether any diagnostic has error severity.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Sorted returns a copy of the collected diagnostics ordered by file, line,
// column, severity (descending) and code, so output stays deterministic when
// units are rendered in parallel.
func (s *Sink) Sorted() []Diagnostic {
	s.mu.Lock()
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
	return out
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }
