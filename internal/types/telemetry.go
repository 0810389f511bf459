package types

import (
	"time"

	"canbridge/internal/availability"
	"canbridge/internal/sensors"
)

// Telemetry is one ground-station update. Only records that were fresh since
// the previous update are present.
type Telemetry struct {
	VehicleID  string    `json:"vehicle_id"`
	Timestamp  time.Time `json:"timestamp"`
	Sequence   int       `json:"sequence"`
	Simulation bool      `json:"simulation"`

	Wind       *sensors.Wind       `json:"wind,omitempty"`
	Air        *sensors.Air        `json:"air,omitempty"`
	Water      *sensors.Water      `json:"water,omitempty"`
	Throttle   *sensors.Throttle   `json:"throttle,omitempty"`
	Navigation *sensors.Navigation `json:"navigation,omitempty"`
	Rudder     *sensors.Rudder     `json:"rudder,omitempty"`
	DateTime   *sensors.DateTime   `json:"date_time,omitempty"`
	Power      *sensors.Power      `json:"power,omitempty"`
	Heading    *sensors.Heading    `json:"heading,omitempty"`
}

// Empty reports whether no record was fresh.
func (t Telemetry) Empty() bool {
	return t.Wind == nil && t.Air == nil && t.Water == nil && t.Throttle == nil &&
		t.Navigation == nil && t.Rudder == nil && t.DateTime == nil &&
		t.Power == nil && t.Heading == nil
}

// Health is the retained per-vehicle availability document.
type Health struct {
	VehicleID string                        `json:"vehicle_id"`
	LastSeen  time.Time                     `json:"last_seen"`
	Healthy   bool                          `json:"healthy"`
	Sensors   map[string]availability.Entry `json:"sensors"`
}
