package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/markergen/internal/codegen/emit"
)

// UnitDumper records the full text of emitted units for debugging.
type UnitDumper interface {
	Dump(u emit.Unit)
}

// unitDumper implements UnitDumper with thread-safe writes.
type unitDumper struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewUnitDumper creates a new UnitDumper. If w is nil, returns a no-op dumper.
func NewUnitDumper(w io.Writer) UnitDumper {
	return &unitDumper{w: w, now: time.Now}
}

// Dump writes a timestamped header line followed by the unit text, each line
// prefixed with "| " so dumps stay greppable.
func (d *unitDumper) Dump(u emit.Unit) {
	if d.w == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s unit %s: %d bytes\n",
		d.now().Format("2006/01/02 15:04:05"),
		u.Name,
		len(u.Text))
	for _, line := range u.Lines() {
		b.WriteString("| ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	d.mu.Lock()
	_, _ = io.WriteString(d.w, b.String())
	d.mu.Unlock()
}
