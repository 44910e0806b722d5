package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/metrics"
	"github.com/nerrad567/warehouse-core/internal/orion"
)

// Defaults applied when the configuration leaves a value unset.
const (
	DefaultTickInterval = 5 * time.Second
	DefaultItemsPerTick = 3
)

// Logger defines the logging interface used by the simulator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTelemetry adds telemetry sinks.
func WithTelemetry(sinks ...Telemetry) Option {
	return func(s *Simulator) { s.telemetry = append(s.telemetry, sinks...) }
}

// WithStateStore persists state after every tick and resumes from it at
// construction.
func WithStateStore(store StateStore) Option {
	return func(s *Simulator) { s.store = store }
}

// WithRand replaces the random source. Tests use it for reproducible walks.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// WithIDs replaces the generator of short id suffixes.
func WithIDs(newID func() string) Option {
	return func(s *Simulator) { s.newID = newID }
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// TickReport summarises one tick.
type TickReport struct {
	Published int
	Failed    int

	// AlertID is the id of the alert raised this tick, if any.
	AlertID string
}

// Simulator generates synthetic warehouse telemetry and publishes it to
// the entity store with the upsert protocol.
//
// Topology is fixed at construction. Each tick resamples every sensor
// reading, drains every battery, walks every zone, walks ItemsPerTick items
// drawn with replacement, and raises an alert with AlertProbability. One
// failed upsert never stops the rest of the tick.
//
// Thread Safety: Tick and Snapshot may be called concurrently; ticks are
// serialised.
type Simulator struct {
	writer    orion.Writer
	interval  time.Duration
	items     int
	alertP    float64
	logger    Logger
	telemetry []Telemetry
	store     StateStore
	rng       *rand.Rand
	newID     func() string
	now       func() time.Time

	mu    sync.Mutex
	state State

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New builds a simulator writing to w. With a state store the stored state
// is resumed; otherwise (or when the store is empty) a fresh topology is
// generated and, with a store, saved immediately.
func New(ctx context.Context, w orion.Writer, cfg config.SimulatorConfig, opts ...Option) (*Simulator, error) {
	if w == nil {
		return nil, fmt.Errorf("simulator: writer is required")
	}

	s := &Simulator{
		writer:   w,
		interval: cfg.TickInterval,
		items:    cfg.ItemsPerTick,
		alertP:   min(max(cfg.AlertProbability, 0), 1),
		logger:   noopLogger{},
		newID:    shortID,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if s.interval <= 0 {
		s.interval = DefaultTickInterval
	}
	if s.items <= 0 {
		s.items = DefaultItemsPerTick
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = newRand(cfg.Seed)
	}

	if s.store != nil {
		st, err := s.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("simulator: %w", err)
		}
		if !st.Empty() {
			s.state = st
			s.logger.Info("simulator state resumed",
				"sensors", len(st.Sensors), "zones", len(st.Zones), "items", len(st.Items))
			return s, nil
		}
	}

	s.state = NewState(s.rng, s.newID)
	if s.store != nil {
		if err := s.store.Save(ctx, s.state.Clone()); err != nil {
			return nil, fmt.Errorf("simulator: saving initial state: %w", err)
		}
	}
	s.logger.Info("simulator topology created",
		"sensors", len(s.state.Sensors), "zones", len(s.state.Zones), "items", len(s.state.Items))
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Simulator) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Tick runs one generation-and-publish cycle.
func (s *Simulator) Tick(ctx context.Context) TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report TickReport
	publish := func(e orion.Entity) {
		outcome, err := orion.Upsert(ctx, s.writer, e)
		metrics.Upserts.WithLabelValues(e.Type, string(outcome)).Inc()
		if err != nil {
			report.Failed++
			s.logger.Warn("upsert failed, dropping update for this tick", "id", e.ID, "error", err)
			return
		}
		report.Published++
	}

	for i := range s.state.Sensors {
		sensor := &s.state.Sensors[i]
		reading := Reading(sensor.Type, s.rng)
		sensor.BatteryLevel = DrainBattery(sensor.BatteryLevel, s.rng)
		at := s.now()
		publish(SensorEntity(*sensor, reading, at))
		for _, t := range s.telemetry {
			t.SensorRead(*sensor, reading, at)
		}
	}

	for i := range s.state.Zones {
		zone := &s.state.Zones[i]
		zone.CurrentInventory = WalkZone(zone.CurrentInventory, zone.Capacity, s.rng)
		at := s.now()
		publish(ZoneEntity(*zone, at))
		for _, t := range s.telemetry {
			t.ZoneMoved(*zone, at)
		}
	}

	if n := len(s.state.Items); n > 0 {
		for range s.items {
			item := &s.state.Items[s.rng.IntN(n)]
			item.Quantity = WalkQuantity(item.Quantity, s.rng)
			at := s.now()
			publish(ItemEntity(*item, at))
			for _, t := range s.telemetry {
				t.ItemMoved(*item, at)
			}
		}
	}

	if alert, ok := DrawAlert(s.alertP, s.rng); ok {
		id := "Alert:" + s.newID()
		at := s.now()
		publish(AlertEntity(id, alert, at))
		for _, t := range s.telemetry {
			t.AlertRaised(id, alert, at)
		}
		metrics.SimulatorAlerts.Inc()
		report.AlertID = id
	}

	if s.store != nil {
		if err := s.store.Save(ctx, s.state.Clone()); err != nil {
			s.logger.Error("saving simulator state failed", "error", err)
		}
	}

	result := metrics.ResultOK
	if report.Failed > 0 {
		result = metrics.ResultError
	}
	metrics.SimulatorTicks.WithLabelValues(result).Inc()
	s.logger.Debug("simulator tick", "published", report.Published, "failed", report.Failed)
	return report
}

// Start runs a tick immediately and then every interval until ctx is
// cancelled or Stop is called.
func (s *Simulator) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop ends the tick loop and waits for an in-progress tick. Safe to call
// more than once.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *Simulator) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Interval returns the tick period in use.
func (s *Simulator) Interval() time.Duration {
	return s.interval
}

func shortID() string {
	return uuid.NewString()[:8]
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
