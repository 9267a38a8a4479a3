package mock

import (
	"context"
	"fmt"
	"math/rand"
)

// FakeSensor simulates a 1-wire temperature device for development
// This implements the ports.TemperatureSensor interface
type FakeSensor struct {
	baseMilli int
	variation int
}

// NewFakeSensor creates a sensor that returns realistic two-line payloads
// baseCelsius: average temperature (e.g. 21.0 for room temperature)
// variation: +/- range in degrees (e.g. 1.5 means 19.5-22.5)
func NewFakeSensor(baseCelsius, variation float64) *FakeSensor {
	return &FakeSensor{
		baseMilli: int(baseCelsius * 1000),
		variation: int(variation * 1000),
	}
}

// Read returns a simulated device payload: a status line ending in the
// ready marker and a data line carrying milli-degrees after "t=".
func (s *FakeSensor) Read(ctx context.Context, deviceID string) ([]string, error) {
	milli := s.baseMilli
	if s.variation > 0 {
		milli += rand.Intn(2*s.variation+1) - s.variation
	}

	return []string{
		"50 05 4b 46 7f ff 0c 10 1c : crc=1c YES",
		fmt.Sprintf("50 05 4b 46 7f ff 0c 10 1c t=%d", milli),
	}, nil
}

// Close is a no-op for fake sensor
func (s *FakeSensor) Close() error {
	return nil
}
