// Package w1 reads 1-wire temperature devices exposed through sysfs.
package w1

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBasePath is where the kernel's w1 bus master publishes slave devices.
const DefaultBasePath = "/sys/bus/w1/devices"

// Sensor implements ports.TemperatureSensor against the w1 sysfs tree.
// Each read opens {base}/{deviceID}/w1_slave and returns its text lines;
// interpreting them is the domain's job.
type Sensor struct {
	basePath string
}

// NewSensor creates a sensor rooted at the standard sysfs path.
func NewSensor() *Sensor {
	return NewSensorAt(DefaultBasePath)
}

// NewSensorAt creates a sensor rooted at basePath. Tests point this at a
// temp directory.
func NewSensorAt(basePath string) *Sensor {
	return &Sensor{basePath: basePath}
}

// Read returns the raw lines of the device's w1_slave file.
func (s *Sensor) Read(ctx context.Context, deviceID string) ([]string, error) {
	// Sysfs reads are fast local I/O, so the only context check worth
	// doing is up front.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(s.basePath, deviceID, "w1_slave"))
	if err != nil {
		return nil, fmt.Errorf("read w1 device %s: %w", deviceID, err)
	}

	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n"), nil
}

// Close is a no-op; sysfs files are opened per read.
func (s *Sensor) Close() error {
	return nil
}
