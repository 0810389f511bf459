// Package availability tracks whether each bus sensor is present (enabled)
// and producing valid data (active). Both states use the same counter rule:
// the counter climbs by one per tick up to Threshold and drops to zero when
// qualifying traffic arrives. A state flips off at Threshold and on at zero,
// nothing in between.
package availability

import "sync"

// Threshold is both the counter ceiling and the disable point, in ticks.
const Threshold = 100

type Sensor uint8

const (
	GPS Sensor = iota
	HeadingRef
	Anemometer
	SpeedDepth
	Power
	Propulsion

	NumSensors
)

var sensorNames = [NumSensors]string{
	GPS:        "gps",
	HeadingRef: "heading_ref",
	Anemometer: "anemometer",
	SpeedDepth: "speed_depth",
	Power:      "power",
	Propulsion: "propulsion",
}

func (s Sensor) String() string {
	if s >= NumSensors {
		return "unknown"
	}
	return sensorNames[s]
}

// Entry is one sensor's dual-counter state.
type Entry struct {
	Enabled        bool  `json:"enabled"`
	EnabledCounter uint8 `json:"enabled_counter"`
	Active         bool  `json:"active"`
	ActiveCounter  uint8 `json:"active_counter"`
}

// Tracker holds a fixed entry per Sensor. The tick goroutine mutates it;
// readers use Entry and Snapshot.
type Tracker struct {
	mu      sync.RWMutex
	entries [NumSensors]Entry
}

// NewTracker returns a tracker with every sensor disabled and inactive and
// both counters at Threshold, so a sensor needs fresh traffic to come up.
func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.entries {
		t.entries[i] = Entry{EnabledCounter: Threshold, ActiveCounter: Threshold}
	}
	return t
}

// Tick advances every counter by one, saturating at Threshold.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		e := &t.entries[i]
		e.EnabledCounter = step(e.EnabledCounter)
		e.ActiveCounter = step(e.ActiveCounter)
	}
}

func step(c uint8) uint8 {
	if c >= Threshold {
		return Threshold
	}
	return c + 1
}

// ResetEnabled records traffic from s. The state changes on the next Evaluate.
func (t *Tracker) ResetEnabled(s Sensor) {
	if s >= NumSensors {
		return
	}
	t.mu.Lock()
	t.entries[s].EnabledCounter = 0
	t.mu.Unlock()
}

// ResetActive records semantically valid data from s.
func (t *Tracker) ResetActive(s Sensor) {
	if s >= NumSensors {
		return
	}
	t.mu.Lock()
	t.entries[s].ActiveCounter = 0
	t.mu.Unlock()
}

// Evaluate applies the transition rule to both states of every entry.
func (t *Tracker) Evaluate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		e := &t.entries[i]
		e.Enabled = transition(e.Enabled, e.EnabledCounter)
		e.Active = transition(e.Active, e.ActiveCounter)
	}
}

func transition(on bool, counter uint8) bool {
	switch {
	case on && counter >= Threshold:
		return false
	case !on && counter == 0:
		return true
	}
	return on
}

func (t *Tracker) Entry(s Sensor) Entry {
	if s >= NumSensors {
		return Entry{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[s]
}

func (t *Tracker) Snapshot() [NumSensors]Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries
}

// Set overwrites an entry. Used to seed state on start-up and in tests.
func (t *Tracker) Set(s Sensor, e Entry) {
	if s >= NumSensors {
		return
	}
	if e.EnabledCounter > Threshold {
		e.EnabledCounter = Threshold
	}
	if e.ActiveCounter > Threshold {
		e.ActiveCounter = Threshold
	}
	t.mu.Lock()
	t.entries[s] = e
	t.mu.Unlock()
}
