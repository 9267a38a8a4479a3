package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// readyMarker terminates the status line when the device's CRC check passed.
const readyMarker = "YES"

// milliRe extracts the milli-degree payload, e.g. "t=27300".
var milliRe = regexp.MustCompile(`t=(-?\d+)`)

// ParseSensorLines turns the device's two-line text output into a Reading
// stamped with the given sample time.
//
// Line 1 is a status line that must end with "YES"; line 2 carries the
// temperature as an integer number of milli-degrees Celsius after a "t="
// marker. The value is rounded to one decimal place. Single-line input is
// treated as an empty second line.
func ParseSensorLines(lines []string, at time.Time) (Reading, error) {
	var line1, line2 string
	if len(lines) > 0 {
		line1 = lines[0]
	}
	if len(lines) > 1 {
		line2 = lines[1]
	}

	if !strings.HasSuffix(strings.TrimSpace(line1), readyMarker) {
		return Reading{}, fmt.Errorf("%w: status line %q", ErrSensorNotReady, line1)
	}

	m := milliRe.FindStringSubmatch(line2)
	if m == nil {
		return Reading{}, fmt.Errorf("%w: no temperature in %q", ErrMalformedReading, line2)
	}

	milli, err := strconv.Atoi(m[1])
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %q: %v", ErrMalformedReading, m[1], err)
	}

	celsius := math.Round(float64(milli)/1000*10) / 10
	return NewReading(celsius, at), nil
}
