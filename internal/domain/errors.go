package domain

import "errors"

var (
	// ErrSensorUnavailable indicates the device could not be read at all
	ErrSensorUnavailable = errors.New("sensor unavailable")

	// ErrSensorNotReady indicates the device answered but reported a bad
	// conversion (status line did not end in the ready marker)
	ErrSensorNotReady = errors.New("sensor not ready")

	// ErrMalformedReading indicates the payload line carried no parseable
	// temperature
	ErrMalformedReading = errors.New("malformed sensor reading")

	// ErrIncompleteReading indicates a reading with a missing field reached
	// a consumer that requires both
	ErrIncompleteReading = errors.New("incomplete reading")

	// ErrReadingNotFound indicates the requested reading doesn't exist
	ErrReadingNotFound = errors.New("reading not found")
)
