package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/plant-monitor/services/temp-service/internal/domain"
)

const (
	// DefaultInterval is the sampling cadence used when none is configured.
	DefaultInterval = 5 * time.Second

	// cleanupInterval is how often old readings are pruned from the
	// history repository.
	cleanupInterval = 1 * time.Hour
)

// MonitorConfig holds the sampling parameters.
type MonitorConfig struct {
	DeviceID string

	// Interval between sampling cycles. Defaults to DefaultInterval.
	Interval time.Duration

	// TimerEnabled gates all sampling. When false the monitor never
	// samples - used for test isolation.
	TimerEnabled bool

	// ReadTimeout bounds a single device read so a hung sensor cannot
	// stall sampling forever. Zero means no timeout.
	ReadTimeout time.Duration

	// Retention is how long history readings are kept. Zero disables
	// pruning.
	Retention time.Duration
}

// readOutcome is the message a sampling task sends back to the state owner.
type readOutcome struct {
	reading domain.Reading
	err     error
}

// Monitor owns the current reading and runs the periodic sampling cycle:
// timer -> async device read -> parse -> state update -> fan-out to the
// display, the reporter and the history repository.
//
// All state lives in the run goroutine and is reached only through channels,
// so no locking is needed. At most one device read is in flight at a time:
// the next timer is armed only after the current cycle's outcome arrives.
type Monitor struct {
	cfg      MonitorConfig
	sensor   TemperatureSensor
	display  Display
	reporter Reporter
	repo     domain.ReadingRepository // optional history sink

	snapshots chan chan domain.Reading
	outcomes  chan readOutcome
	done      chan struct{}
}

// StartMonitor begins sampling and returns the monitor handle. The first
// cycle runs immediately (zero delay); subsequent cycles are spaced by
// cfg.Interval. The monitor runs until ctx is cancelled.
func StartMonitor(ctx context.Context, cfg MonitorConfig, sensor TemperatureSensor, display Display, reporter Reporter, repo domain.ReadingRepository) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	m := &Monitor{
		cfg:       cfg,
		sensor:    sensor,
		display:   display,
		reporter:  reporter,
		repo:      repo,
		snapshots: make(chan chan domain.Reading),
		outcomes:  make(chan readOutcome),
		done:      make(chan struct{}),
	}

	log.Info().
		Str("device_id", cfg.DeviceID).
		Dur("interval", cfg.Interval).
		Bool("timer_enabled", cfg.TimerEnabled).
		Msg("starting temperature monitor")

	go m.run(ctx)
	return m
}

// Reading returns a snapshot of the current reading. It never blocks on
// device I/O, only on the owner's mailbox. Before the first successful
// sample the snapshot has both fields absent.
func (m *Monitor) Reading() domain.Reading {
	resp := make(chan domain.Reading, 1)
	select {
	case m.snapshots <- resp:
		return <-resp
	case <-m.done:
		return domain.Reading{}
	}
}

// Done is closed once the monitor has stopped.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// run is the single state owner. It processes its inbox serially, so every
// read and write of the current reading is linearized here.
func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	var current domain.Reading
	sampling := false

	// A stopped timer when sampling is disabled: no cycles at all.
	var triggerC <-chan time.Time
	var trigger *time.Timer
	if m.cfg.TimerEnabled {
		trigger = time.NewTimer(0)
		defer trigger.Stop()
		triggerC = trigger.C
	}

	var cleanupC <-chan time.Time
	if m.repo != nil && m.cfg.Retention > 0 {
		cleanup := time.NewTicker(cleanupInterval)
		defer cleanup.Stop()
		cleanupC = cleanup.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping temperature monitor")
			return

		case <-triggerC:
			if sampling {
				// Cannot happen while the timer is only re-armed on
				// completion; kept as an explicit invariant.
				continue
			}
			sampling = true
			go m.sample(ctx)

		case out := <-m.outcomes:
			sampling = false
			current = m.apply(ctx, current, out)
			m.display.Show(current)
			m.reporter.HandleReading(current)
			if trigger != nil {
				trigger.Reset(m.cfg.Interval)
			}

		case resp := <-m.snapshots:
			resp <- current

		case <-cleanupC:
			if err := m.repo.DeleteOldReadings(ctx, m.cfg.Retention); err != nil {
				log.Error().Err(err).Msg("failed to delete old readings")
			} else {
				log.Debug().Dur("retention", m.cfg.Retention).Msg("pruned old readings")
			}
		}
	}
}

// sample performs one device read off the owner goroutine and reports the
// outcome back. A slow or hung read therefore never delays snapshot requests,
// only the next cycle.
func (m *Monitor) sample(ctx context.Context) {
	rctx := ctx
	if m.cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, m.cfg.ReadTimeout)
		defer cancel()
	}

	var out readOutcome
	lines, err := m.sensor.Read(rctx, m.cfg.DeviceID)
	if err != nil {
		out.err = fmt.Errorf("%w: %v", domain.ErrSensorUnavailable, err)
	} else {
		out.reading, out.err = domain.ParseSensorLines(lines, time.Now())
	}

	select {
	case m.outcomes <- out:
	case <-ctx.Done():
	}
}

// apply folds one read outcome into the current state. Failures preserve the
// prior reading; the cycle still fans out the last known good value.
func (m *Monitor) apply(ctx context.Context, current domain.Reading, out readOutcome) domain.Reading {
	if out.err != nil {
		log.Warn().
			Err(out.err).
			Str("device_id", m.cfg.DeviceID).
			Msg("sample failed, keeping last reading")
		return current
	}

	next := out.reading
	if current.Celsius == nil || *current.Celsius != *next.Celsius {
		log.Info().
			Str("device_id", m.cfg.DeviceID).
			Float64("celsius", next.Value()).
			Msg("temperature changed")
	}

	if m.repo != nil {
		if err := m.repo.SaveReading(ctx, next); err != nil {
			log.Error().Err(err).Msg("failed to save reading")
		}
	}

	return next
}
