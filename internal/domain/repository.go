package domain

import (
	"context"
	"time"
)

// ReadingRepository defines operations for storing/retrieving readings
// This is a PORT - adapters (SQLite, Memory) will implement it
type ReadingRepository interface {
	// SaveReading persists a complete reading. Incomplete readings are
	// rejected with ErrIncompleteReading.
	SaveReading(ctx context.Context, reading Reading) error

	// GetLatestReading retrieves the most recent reading
	GetLatestReading(ctx context.Context) (Reading, error)

	// GetReadingsInRange retrieves all readings within time range.
	// Uses a half-open interval: inclusive start, exclusive end [start, end).
	GetReadingsInRange(ctx context.Context, start, end time.Time) ([]Reading, error)

	// DeleteOldReadings removes readings older than specified duration
	DeleteOldReadings(ctx context.Context, olderThan time.Duration) error
}
