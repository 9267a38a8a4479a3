package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with in-memory storage
// This is perfect for development - no database setup needed
type ReadingRepository struct {
	mu       sync.RWMutex
	readings []domain.Reading
}

// NewReadingRepository creates an empty in-memory repository
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{}
}

// SaveReading stores a complete reading in memory
func (r *ReadingRepository) SaveReading(ctx context.Context, reading domain.Reading) error {
	if !reading.Complete() {
		return domain.ErrIncompleteReading
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.readings = append(r.readings, reading)
	return nil
}

// GetLatestReading returns the most recent reading
func (r *ReadingRepository) GetLatestReading(ctx context.Context) (domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.readings) == 0 {
		return domain.Reading{}, domain.ErrReadingNotFound
	}

	latest := r.readings[0]
	for _, reading := range r.readings[1:] {
		if reading.Timestamp.After(latest.Timestamp) {
			latest = reading
		}
	}
	return latest, nil
}

// GetReadingsInRange returns all readings within [start, end)
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, start, end time.Time) ([]domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []domain.Reading
	for _, reading := range r.readings {
		if !reading.Timestamp.Before(start) && reading.Timestamp.Before(end) {
			results = append(results, reading)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})

	return results, nil
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	kept := r.readings[:0]
	for _, reading := range r.readings {
		if !reading.Timestamp.Before(cutoff) {
			kept = append(kept, reading)
		}
	}
	r.readings = kept

	return nil
}
