package domain

import (
	"time"
)

// Reading represents a single temperature measurement
// This is pure domain logic - no hardware, no HTTP, just business concepts
type Reading struct {
	Celsius   *float64
	Timestamp time.Time
}

// NewReading creates a complete reading. Celsius and Timestamp are only ever
// set together; the zero Reading is the "no successful sample yet" state.
func NewReading(celsius float64, at time.Time) Reading {
	return Reading{
		Celsius:   &celsius,
		Timestamp: at,
	}
}

// Complete reports whether both fields are present. Incomplete readings are
// expected before the first successful sample and are filtered before
// delivery, not treated as faults.
func (r Reading) Complete() bool {
	return r.Celsius != nil && !r.Timestamp.IsZero()
}

// Value returns the temperature, or 0 for an incomplete reading.
func (r Reading) Value() float64 {
	if r.Celsius == nil {
		return 0
	}
	return *r.Celsius
}
