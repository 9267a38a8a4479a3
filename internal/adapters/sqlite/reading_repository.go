package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
)

// timeLayout is how timestamps are stored; sub-second precision is not
// needed for temperature history.
const timeLayout = "2006-01-02 15:04:05"

// ReadingRepository implements domain.ReadingRepository with SQLite
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository creates a SQLite-backed repository
func NewReadingRepository(dbPath string) (*ReadingRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table if not exists
	schema := `
	CREATE TABLE IF NOT EXISTS temperature_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		celsius REAL NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_temp_timestamp ON temperature_readings(timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &ReadingRepository{db: db}, nil
}

// SaveReading stores a complete reading in SQLite
func (r *ReadingRepository) SaveReading(ctx context.Context, reading domain.Reading) error {
	if !reading.Complete() {
		return domain.ErrIncompleteReading
	}

	query := `INSERT INTO temperature_readings (celsius, timestamp) VALUES (?, ?)`

	_, err := r.db.ExecContext(ctx, query, reading.Value(), reading.Timestamp.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

// GetLatestReading returns the most recent reading
func (r *ReadingRepository) GetLatestReading(ctx context.Context) (domain.Reading, error) {
	query := `
		SELECT celsius, timestamp
		FROM temperature_readings
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	return r.scanReading(r.db.QueryRowContext(ctx, query))
}

// GetReadingsInRange returns all readings within [start, end)
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, start, end time.Time) ([]domain.Reading, error) {
	query := `
		SELECT celsius, timestamp
		FROM temperature_readings
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, start.UTC().Format(timeLayout), end.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []domain.Reading
	for rows.Next() {
		var celsius float64
		var timestamp string
		if err := rows.Scan(&celsius, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}

		ts, err := time.ParseInLocation(timeLayout, timestamp, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}

		readings = append(readings, domain.NewReading(celsius, ts))
	}

	return readings, rows.Err()
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	query := `DELETE FROM temperature_readings WHERE timestamp < ?`

	_, err := r.db.ExecContext(ctx, query, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to delete old readings: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *ReadingRepository) Close() error {
	return r.db.Close()
}

func (r *ReadingRepository) scanReading(row *sql.Row) (domain.Reading, error) {
	var celsius float64
	var timestamp string

	err := row.Scan(&celsius, &timestamp)
	if err == sql.ErrNoRows {
		return domain.Reading{}, domain.ErrReadingNotFound
	}
	if err != nil {
		return domain.Reading{}, fmt.Errorf("failed to query reading: %w", err)
	}

	ts, err := time.ParseInLocation(timeLayout, timestamp, time.UTC)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	return domain.NewReading(celsius, ts), nil
}
