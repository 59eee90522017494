package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrettyOpts controls human-readable rendering.
type PrettyOpts struct {
	Color bool
}

// Pretty writes one line per diagnostic:
//
//	<file>:<line>:<col>: <severity> <code>: <message>
func Pretty(w io.Writer, diags []Diagnostic, opts PrettyOpts) error {
	for _, d := range diags {
		sev := d.Severity.String()
		loc := d.Location.String()
		if opts.Color {
			sev = severityColor(d.Severity).Sprint(sev)
			loc = painter(color.Bold).Sprint(loc)
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev, d.Code, d.Message); err != nil {
			return err
		}
	}
	return nil
}

func severityColor(s Severity) *color.Color {
	switch s {
	case SevError:
		return painter(color.FgRed, color.Bold)
	case SevWarning:
		return painter(color.FgYellow, color.Bold)
	default:
		return painter(color.FgCyan)
	}
}

// painter returns a color that is always enabled; tty detection happens in
// the CLI before Pretty is asked for color.
func painter(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}
