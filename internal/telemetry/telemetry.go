// Package telemetry is the ground-station consumer of the sensor store. It is
// the only reader of the fresh flags: each update carries the records that
// changed since the previous one.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"canbridge/internal/availability"
	"canbridge/internal/dispatch"
	"canbridge/internal/types"
)

type Publisher interface {
	PublishTelemetry(t types.Telemetry) error
	PublishHealth(h types.Health) error
}

type Service struct {
	vehicleID string
	interval  time.Duration
	d         *dispatch.Dispatcher
	pub       Publisher
	logger    *slog.Logger
	now       func() time.Time

	seq int
}

func NewService(vehicleID string, interval time.Duration, d *dispatch.Dispatcher, pub Publisher, logger *slog.Logger) *Service {
	return &Service{
		vehicleID: vehicleID,
		interval:  interval,
		d:         d,
		pub:       pub,
		logger:    logger,
		now:       time.Now,
	}
}

// Telemetry takes every fresh record from the store, clearing its flag.
func (s *Service) Telemetry() types.Telemetry {
	st := s.d.Store()
	t := types.Telemetry{
		VehicleID:  s.vehicleID,
		Timestamp:  s.now().UTC(),
		Simulation: s.d.Simulation(),
	}
	if v, ok := st.Wind(); ok {
		t.Wind = &v
	}
	if v, ok := st.Air(); ok {
		t.Air = &v
	}
	if v, ok := st.Water(); ok {
		t.Water = &v
	}
	if v, ok := st.Throttle(); ok {
		t.Throttle = &v
	}
	if v, ok := st.Navigation(); ok {
		t.Navigation = &v
	}
	if v, ok := st.Rudder(); ok {
		t.Rudder = &v
	}
	if v, ok := st.DateTime(); ok {
		t.DateTime = &v
	}
	if v, ok := st.Power(); ok {
		t.Power = &v
	}
	if v, ok := st.Heading(); ok {
		t.Heading = &v
	}
	return t
}

// Health summarises availability. The vehicle is healthy when at least one
// sensor is enabled and every enabled sensor is active.
func (s *Service) Health() types.Health {
	snap := s.d.Tracker().Snapshot()
	h := types.Health{
		VehicleID: s.vehicleID,
		LastSeen:  s.now().UTC(),
		Sensors:   make(map[string]availability.Entry, len(snap)),
	}
	enabled := 0
	healthy := true
	for i, e := range snap {
		h.Sensors[availability.Sensor(i).String()] = e
		if e.Enabled {
			enabled++
			healthy = healthy && e.Active
		}
	}
	h.Healthy = healthy && enabled > 0
	return h
}

// Publish sends one telemetry update, skipped when nothing is fresh, and the
// health document.
func (s *Service) Publish() error {
	t := s.Telemetry()
	if !t.Empty() {
		s.seq++
		t.Sequence = s.seq
		if err := s.pub.PublishTelemetry(t); err != nil {
			return err
		}
	}
	return s.pub.PublishHealth(s.Health())
}

// Run publishes every interval until ctx is cancelled. Publish errors are
// logged; the records they carried are not retried.
func (s *Service) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := s.Publish(); err != nil {
				s.logger.Warn("telemetry publish failed", "error", err)
			}
		}
	}
}
