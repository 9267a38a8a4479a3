package domain

import (
	"testing"
	"time"
)

func TestReading_Complete(t *testing.T) {
	celsius := 27.0

	tests := []struct {
		name    string
		reading Reading
		want    bool
	}{
		{
			name:    "zero reading has both fields absent",
			reading: Reading{},
			want:    false,
		},
		{
			name:    "celsius without timestamp",
			reading: Reading{Celsius: &celsius},
			want:    false,
		},
		{
			name:    "timestamp without celsius",
			reading: Reading{Timestamp: time.Now()},
			want:    false,
		},
		{
			name:    "constructed reading",
			reading: NewReading(27.0, time.Now()),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reading.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReading_Value(t *testing.T) {
	if got := (Reading{}).Value(); got != 0 {
		t.Errorf("expected 0 for incomplete reading, got %v", got)
	}

	r := NewReading(27.3, time.Now())
	if got := r.Value(); got != 27.3 {
		t.Errorf("expected 27.3, got %v", got)
	}
}
