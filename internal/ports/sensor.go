package ports

import (
	"context"
)

// TemperatureSensor defines how to read raw temperature sensor output
// This is a PORT - adapters (sysfs 1-wire, Mock) will implement it
type TemperatureSensor interface {
	// Read returns the raw text lines reported by the device. The two-line
	// protocol itself is opaque here; parsing lives in the domain.
	Read(ctx context.Context, deviceID string) ([]string, error)

	// Close releases any resources
	Close() error
}
