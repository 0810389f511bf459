// Package dispatch drains the receive queue once per tick, routes each frame
// to its handler and updates the sensor store and availability tracker.
package dispatch

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"canbridge/internal/availability"
	"canbridge/internal/can"
	"canbridge/internal/nmea2000"
	"canbridge/internal/sensors"
)

// DefaultMaxFramesPerTick bounds the work done in one tick. Frames past the
// cap stay queued for the next tick.
const DefaultMaxFramesPerTick = 32

// Receiver is the consumer side of the receive queue. Pop must not block.
type Receiver interface {
	Pop() (can.Frame, bool)
	Len() int64
}

type Config struct {
	MaxFramesPerTick int
}

// Stats are cumulative since construction, except LastTickDuration.
type Stats struct {
	Ticks            uint64
	FramesSeen       uint64
	FramesHandled    uint64
	FramesRejected   uint64
	PartialDecodes   uint64
	CapHits          uint64
	RouteFrames      [NumRoutes]uint64
	LastTickDuration time.Duration
}

type Dispatcher struct {
	rx      Receiver
	store   *sensors.Store
	tracker *availability.Tracker
	logger  *slog.Logger

	maxFrames int
	direct    map[uint32]Route
	pgns      map[nmea2000.PGN]Route
	handlers  [NumRoutes]handler

	simulation atomic.Bool
	clearNav   atomic.Bool
	now        func() time.Time

	mu    sync.Mutex
	stats Stats
}

func New(cfg Config, rx Receiver, store *sensors.Store, tracker *availability.Tracker, logger *slog.Logger) *Dispatcher {
	if cfg.MaxFramesPerTick <= 0 {
		cfg.MaxFramesPerTick = DefaultMaxFramesPerTick
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		rx:        rx,
		store:     store,
		tracker:   tracker,
		logger:    logger,
		maxFrames: cfg.MaxFramesPerTick,
		direct:    directRoutes(),
		pgns:      pgnRoutes(),
		handlers:  handlers(),
		now:       time.Now,
	}
}

// Tick runs one dispatch cycle: advance the availability counters, drain up
// to the frame cap, then evaluate availability. It returns the number of
// frames that matched a route.
func (d *Dispatcher) Tick() int {
	start := d.now()
	if d.clearNav.Swap(false) {
		d.store.ClearNavigation()
	}
	d.tracker.Tick()

	var (
		delta   Stats
		popped  int
		matched int
	)
	for popped < d.maxFrames {
		f, ok := d.rx.Pop()
		if !ok {
			break
		}
		popped++
		delta.FramesSeen++

		route := d.Classify(f)
		if route == RouteNone {
			delta.FramesRejected++
			continue
		}
		matched++
		delta.RouteFrames[route]++
		if !d.handlers[route](d, f.Payload()) {
			delta.PartialDecodes++
			d.logger.Debug("partial decode discarded", "route", route, "id", f.ID)
		}
	}
	if popped == d.maxFrames && d.rx.Len() > 0 {
		delta.CapHits++
	}

	d.tracker.Evaluate()

	delta.FramesHandled = uint64(matched)
	d.record(delta, d.now().Sub(start))
	return matched
}

// Classify maps a frame to its route. Standard frames are matched by
// identifier, extended frames by PGN.
func (d *Dispatcher) Classify(f can.Frame) Route {
	if !f.Extended {
		return d.direct[f.ID]
	}
	return d.pgns[nmea2000.DecodeID(f.ID).PGN]
}

func (d *Dispatcher) record(delta Stats, took time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Ticks++
	d.stats.FramesSeen += delta.FramesSeen
	d.stats.FramesHandled += delta.FramesHandled
	d.stats.FramesRejected += delta.FramesRejected
	d.stats.PartialDecodes += delta.PartialDecodes
	d.stats.CapHits += delta.CapHits
	for i, n := range delta.RouteFrames {
		d.stats.RouteFrames[i] += n
	}
	d.stats.LastTickDuration = took
}

func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// SetSimulation toggles simulation mode. While it is on, navigation receiver
// position and velocity frames are consumed without effect. Turning it on
// clears the navigation record at the start of the next tick, so a fix
// handled in a tick already running cannot survive the switch.
func (d *Dispatcher) SetSimulation(on bool) {
	if d.simulation.Swap(on) == on {
		return
	}
	if on {
		d.clearNav.Store(true)
	}
	d.logger.Info("simulation mode changed", "enabled", on)
}

func (d *Dispatcher) Simulation() bool {
	return d.simulation.Load()
}

func (d *Dispatcher) Store() *sensors.Store          { return d.store }
func (d *Dispatcher) Tracker() *availability.Tracker { return d.tracker }
func (d *Dispatcher) MaxFramesPerTick() int          { return d.maxFrames }
