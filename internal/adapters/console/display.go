// Package console renders readings to a local terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
)

// Display implements ports.Display by printing one line per reading.
type Display struct {
	out io.Writer
}

// NewDisplay writes to stdout.
func NewDisplay() *Display {
	return &Display{out: os.Stdout}
}

// NewDisplayTo writes to the given writer (used in tests).
func NewDisplayTo(out io.Writer) *Display {
	return &Display{out: out}
}

// Show renders the reading. An incomplete reading (no successful sample yet)
// renders as a placeholder instead of failing.
func (d *Display) Show(reading domain.Reading) {
	if !reading.Complete() {
		fmt.Fprintln(d.out, "temperature --.-")
		return
	}
	fmt.Fprintf(d.out, "%s temperature %.1f°C\n", reading.Timestamp.Format(time.RFC3339), reading.Value())
}
