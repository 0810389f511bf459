// Package envsensor reads the board's BME280 over I2C.
package envsensor

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// Reading is one environment sample in display units.
type Reading struct {
	Temperature float64 `json:"temperature_c"`
	Humidity    float64 `json:"humidity_pct"`
	Pressure    float64 `json:"pressure_hpa"`
}

type senseHalter interface {
	Sense(env *physic.Env) error
	Halt() error
}

type BME280 struct {
	mu  sync.Mutex
	bus i2c.BusCloser
	dev senseHalter
}

// Open initialises the host drivers and the sensor at addr on the default
// I2C bus (usually /dev/i2c-1).
func Open(addr uint16) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("bme280 at %#x: %w", addr, err)
	}
	return &BME280{bus: bus, dev: dev}, nil
}

func (s *BME280) Read() (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return Reading{}, fmt.Errorf("bme280 sense: %w", err)
	}
	return fromEnv(env), nil
}

// Temperature returns the current temperature in degrees Celsius.
func (s *BME280) Temperature() (float64, error) {
	r, err := s.Read()
	if err != nil {
		return 0, err
	}
	return r.Temperature, nil
}

func (s *BME280) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.dev.Halt()
	if s.bus != nil {
		if cerr := s.bus.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func fromEnv(env physic.Env) Reading {
	return Reading{
		Temperature: env.Temperature.Celsius(),
		// 1e-5 %rH per unit
		Humidity: float64(env.Humidity) / float64(physic.PercentRH),
		// nano pascals
		Pressure: float64(env.Pressure) / float64(100*physic.Pascal),
	}
}
