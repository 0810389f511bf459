// Package status sends the node's periodic Status frame.
package status

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"canbridge/internal/availability"
	"canbridge/internal/bus"
	"canbridge/internal/canmsg"
	"canbridge/internal/dispatch"
)

// Status word bits.
const (
	TemperatureFaultBit uint16 = 1 << 0
	SimulationBit       uint16 = 1 << 1
)

// TemperatureSource reports the board temperature in degrees Celsius.
type TemperatureSource interface {
	Temperature() (float64, error)
}

type Beacon struct {
	nodeID     uint8
	interval   time.Duration
	tickPeriod time.Duration

	d      *dispatch.Dispatcher
	sender bus.Sender
	temp   TemperatureSource
	logger *slog.Logger
}

type Options struct {
	NodeID     uint8
	Interval   time.Duration
	TickPeriod time.Duration
	// Temperature may be nil; the frame then carries 0 and TemperatureFaultBit.
	Temperature TemperatureSource
}

func NewBeacon(opts Options, d *dispatch.Dispatcher, sender bus.Sender, logger *slog.Logger) *Beacon {
	return &Beacon{
		nodeID:     opts.NodeID,
		interval:   opts.Interval,
		tickPeriod: opts.TickPeriod,
		d:          d,
		sender:     sender,
		temp:       opts.Temperature,
		logger:     logger,
	}
}

// Build assembles the current Status without sending it. It reads the power
// record without clearing its fresh flag.
func (b *Beacon) Build() canmsg.Status {
	s := canmsg.Status{NodeID: b.nodeID}

	if b.tickPeriod > 0 {
		load := float64(b.d.Stats().LastTickDuration) / float64(b.tickPeriod) * 100
		s.CPULoad = uint8(math.Min(load, 100))
	}

	if b.temp == nil {
		s.Status |= TemperatureFaultBit
	} else if c, err := b.temp.Temperature(); err != nil {
		b.logger.Debug("board temperature unavailable", "error", err)
		s.Status |= TemperatureFaultBit
	} else {
		s.Temperature = int8(math.Max(math.MinInt8, math.Min(math.MaxInt8, c)))
	}

	v := float64(b.d.Store().Peek().Power.Value.Voltage) * 10
	s.Voltage = uint8(math.Max(0, math.Min(math.MaxUint8, v)))

	if b.d.Simulation() {
		s.Status |= SimulationBit
	}

	for i, e := range b.d.Tracker().Snapshot() {
		if !e.Enabled {
			s.Errors |= 1 << availability.Sensor(i)
		}
	}
	return s
}

// Run sends a Status frame every interval until ctx is cancelled. Send
// failures are logged and the beacon keeps going.
func (b *Beacon) Run(ctx context.Context) error {
	t := time.NewTicker(b.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s := b.Build()
			if err := b.sender.Send(ctx, s.Frame()); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				b.logger.Warn("status send failed", "error", err)
				continue
			}
			b.logger.Debug("status sent",
				"cpu_load", s.CPULoad,
				"temperature", s.Temperature,
				"status", s.Status,
				"errors", s.Errors,
			)
		}
	}
}
