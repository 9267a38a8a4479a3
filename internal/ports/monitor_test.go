package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quentinrf/plant-monitor/services/temp-service/internal/adapters/memory"
	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
)

// stubSensor returns whatever the read func says for the n-th call.
type stubSensor struct {
	mu    sync.Mutex
	calls int
	read  func(call int) ([]string, error)
}

func (s *stubSensor) Read(ctx context.Context, deviceID string) ([]string, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	s.mu.Unlock()
	return s.read(call)
}

func (s *stubSensor) Close() error { return nil }

func (s *stubSensor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// captureSink records fan-out calls; used as both Display and Reporter.
type captureSink struct {
	calls chan domain.Reading
}

func newCaptureSink() *captureSink {
	return &captureSink{calls: make(chan domain.Reading, 32)}
}

func (c *captureSink) Show(r domain.Reading)          { c.calls <- r }
func (c *captureSink) HandleReading(r domain.Reading) { c.calls <- r }

func (c *captureSink) next(t *testing.T, timeout time.Duration) domain.Reading {
	t.Helper()
	select {
	case r := <-c.calls:
		return r
	case <-time.After(timeout):
		t.Fatal("timed out waiting for fan-out call")
		return domain.Reading{}
	}
}

func goodLines(milli int) []string {
	return []string{
		"50 05 4b 46 7f ff 0c 10 1c : crc=1c YES",
		fmt.Sprintf("50 05 4b 46 7f ff 0c 10 1c t=%d", milli),
	}
}

func notReadyLines() []string {
	return []string{
		"50 05 4b 46 7f ff 0c 10 1c : crc=1c NO",
		"50 05 4b 46 7f ff 0c 10 1c t=99999",
	}
}

func startTestMonitor(t *testing.T, cfg MonitorConfig, sensor TemperatureSensor, repo domain.ReadingRepository) (*Monitor, *captureSink, *captureSink) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	display := newCaptureSink()
	reporter := newCaptureSink()
	m := StartMonitor(ctx, cfg, sensor, display, reporter, repo)
	return m, display, reporter
}

func TestMonitor_FirstCycleRunsImmediately(t *testing.T) {
	sensor := &stubSensor{read: func(int) ([]string, error) { return goodLines(27300), nil }}

	// A one-hour interval proves the first cycle does not wait for it.
	m, display, reporter := startTestMonitor(t, MonitorConfig{
		DeviceID:     "28-test",
		Interval:     time.Hour,
		TimerEnabled: true,
	}, sensor, nil)

	shown := display.next(t, time.Second)
	if !shown.Complete() || shown.Value() != 27.3 {
		t.Errorf("expected 27.3°C on display, got %+v", shown)
	}

	reported := reporter.next(t, time.Second)
	if !reported.Complete() || reported.Value() != 27.3 {
		t.Errorf("expected 27.3°C at reporter, got %+v", reported)
	}

	snapshot := m.Reading()
	if !snapshot.Complete() || snapshot.Value() != 27.3 {
		t.Errorf("expected snapshot 27.3°C, got %+v", snapshot)
	}
}

func TestMonitor_TimerDisabledNeverSamples(t *testing.T) {
	sensor := &stubSensor{read: func(int) ([]string, error) { return goodLines(27300), nil }}

	m, display, _ := startTestMonitor(t, MonitorConfig{
		DeviceID:     "28-test",
		Interval:     10 * time.Millisecond,
		TimerEnabled: false,
	}, sensor, nil)

	select {
	case r := <-display.calls:
		t.Fatalf("expected no cycles with timer disabled, display got %+v", r)
	case <-time.After(100 * time.Millisecond):
	}

	if n := sensor.callCount(); n != 0 {
		t.Errorf("expected 0 sensor reads, got %d", n)
	}
	if snapshot := m.Reading(); snapshot.Complete() {
		t.Errorf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestMonitor_ReadingBeforeFirstSuccess(t *testing.T) {
	sensor := &stubSensor{read: func(int) ([]string, error) { return nil, errors.New("device missing") }}

	m, display, reporter := startTestMonitor(t, MonitorConfig{
		DeviceID:     "28-test",
		Interval:     time.Hour,
		TimerEnabled: true,
	}, sensor, nil)

	// The failed cycle still fans out the (empty) current reading.
	if shown := display.next(t, time.Second); shown.Complete() {
		t.Errorf("expected empty reading on display, got %+v", shown)
	}
	if reported := reporter.next(t, time.Second); reported.Complete() {
		t.Errorf("expected empty reading at reporter, got %+v", reported)
	}

	snapshot := m.Reading()
	if snapshot.Celsius != nil || !snapshot.Timestamp.IsZero() {
		t.Errorf("expected both fields absent, got %+v", snapshot)
	}
}

func TestMonitor_FailedCyclePreservesState(t *testing.T) {
	sensor := &stubSensor{read: func(call int) ([]string, error) {
		if call == 0 {
			return goodLines(27300), nil
		}
		return notReadyLines(), nil
	}}

	m, display, _ := startTestMonitor(t, MonitorConfig{
		DeviceID:     "28-test",
		Interval:     20 * time.Millisecond,
		TimerEnabled: true,
	}, sensor, nil)

	first := display.next(t, time.Second)
	if first.Value() != 27.3 {
		t.Fatalf("expected first cycle to show 27.3°C, got %+v", first)
	}

	// The next cycle fails to parse; the last known good reading is re-sent.
	second := display.next(t, time.Second)
	if !second.Complete() || second.Value() != 27.3 {
		t.Errorf("expected prior reading preserved, got %+v", second)
	}
	if !second.Timestamp.Equal(first.Timestamp) {
		t.Errorf("expected unchanged timestamp, got %v then %v", first.Timestamp, second.Timestamp)
	}

	if snapshot := m.Reading(); snapshot.Value() != 27.3 {
		t.Errorf("expected snapshot to keep 27.3°C, got %+v", snapshot)
	}
}

func TestMonitor_SavesHistoryOnSuccess(t *testing.T) {
	sensor := &stubSensor{read: func(int) ([]string, error) { return goodLines(21400), nil }}
	repo := memory.NewReadingRepository()

	_, display, _ := startTestMonitor(t, MonitorConfig{
		DeviceID:     "28-test",
		Interval:     time.Hour,
		TimerEnabled: true,
		Retention:    time.Hour,
	}, sensor, repo)

	display.next(t, time.Second)

	latest, err := repo.GetLatestReading(context.Background())
	if err != nil {
		t.Fatalf("GetLatestReading failed: %v", err)
	}
	if latest.Value() != 21.4 {
		t.Errorf("expected 21.4°C in history, got %v", latest.Value())
	}
}

func TestMonitor_SnapshotNotBlockedBySlowRead(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	sensor := &stubSensor{read: func(int) ([]string, error) {
		<-release // hung device read
		return nil, errors.New("released")
	}}

	m, _, _ := startTestMonitor(t, MonitorConfig{
		DeviceID:     "28-test",
		Interval:     time.Hour,
		TimerEnabled: true,
	}, sensor, nil)

	// Give the first cycle time to dispatch the (hung) read.
	time.Sleep(20 * time.Millisecond)

	done := make(chan domain.Reading, 1)
	go func() { done <- m.Reading() }()

	select {
	case snapshot := <-done:
		if snapshot.Complete() {
			t.Errorf("expected empty snapshot while read in flight, got %+v", snapshot)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Reading() blocked on an in-flight device read")
	}
}
