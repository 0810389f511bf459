package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"CONFIG_FILE", "APP_ENV", "LOG_LEVEL", "LOG_FILE", "NODE_ID", "VEHICLE_ID",
	"BUS_MODE", "CAN_INTERFACE", "REPLAY_PATH", "REPLAY_LOOP", "REPLAY_SPEED",
	"TICK_RATE", "DISPATCH_MAX_FRAMES", "RX_QUEUE_HINT", "STATUS_INTERVAL",
	"TELEMETRY_INTERVAL", "HTTP_ADDR", "MQTT_BROKER", "MQTT_PORT",
	"MQTT_CLIENT_ID", "BME280_ADDRESS", "SIMULATION", "TRACE_SQL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.BusMode != BusSocketCAN || got.CANInterface != "can0" {
		t.Errorf("bus = %q on %q, want socketcan on can0", got.BusMode, got.CANInterface)
	}
	if got.TickRate != 100 || got.TickPeriod() != 10*time.Millisecond {
		t.Errorf("TickRate = %d (period %v), want 100 (10ms)", got.TickRate, got.TickPeriod())
	}
	if got.DispatchMaxFrames != 32 {
		t.Errorf("DispatchMaxFrames = %d, want 32", got.DispatchMaxFrames)
	}
	if got.StatusInterval != time.Second || got.TelemetryInterval != time.Second {
		t.Errorf("intervals = %v/%v, want 1s/1s", got.StatusInterval, got.TelemetryInterval)
	}
	if got.MQTTBroker != "" || got.MQTTPort != 1883 {
		t.Errorf("mqtt = %q:%d, want disabled on 1883", got.MQTTBroker, got.MQTTPort)
	}
	if got.BME280Address != 0 {
		t.Errorf("BME280Address = %#x, want 0", got.BME280Address)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ID", "0x21")
	t.Setenv("BUS_MODE", "REPLAY")
	t.Setenv("REPLAY_PATH", "/var/lib/canbridge/sea-trial.db")
	t.Setenv("REPLAY_LOOP", "false")
	t.Setenv("TICK_RATE", "50")
	t.Setenv("BME280_ADDRESS", "0x77")
	t.Setenv("SIMULATION", "true")
	t.Setenv("LOG_LEVEL", " Debug ")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.NodeID != 0x21 {
		t.Errorf("NodeID = %#x, want 0x21", got.NodeID)
	}
	if got.BusMode != BusReplay || got.ReplayLoop {
		t.Errorf("BusMode = %q loop %v, want replay without loop", got.BusMode, got.ReplayLoop)
	}
	if got.TickPeriod() != 20*time.Millisecond {
		t.Errorf("TickPeriod = %v, want 20ms", got.TickPeriod())
	}
	if got.BME280Address != 0x77 {
		t.Errorf("BME280Address = %#x, want 0x77", got.BME280Address)
	}
	if !got.Simulation {
		t.Error("Simulation = false, want true")
	}
	if got.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", got.LogLevel)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "app env", key: "APP_ENV", val: "staging"},
		{name: "log level", key: "LOG_LEVEL", val: "trace"},
		{name: "node id overflow", key: "NODE_ID", val: "256"},
		{name: "bus mode", key: "BUS_MODE", val: "serial"},
		{name: "replay without path", key: "BUS_MODE", val: "replay"},
		{name: "zero tick rate", key: "TICK_RATE", val: "0"},
		{name: "tick rate too high", key: "TICK_RATE", val: "5000"},
		{name: "negative frames", key: "DISPATCH_MAX_FRAMES", val: "-1"},
		{name: "status interval", key: "STATUS_INTERVAL", val: "soon"},
		{name: "zero telemetry interval", key: "TELEMETRY_INTERVAL", val: "0s"},
		{name: "mqtt port", key: "MQTT_PORT", val: "mqtt"},
		{name: "bme280 address", key: "BME280_ADDRESS", val: "0x1FFFF"},
		{name: "simulation", key: "SIMULATION", val: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
		})
	}
}

func TestLoadFromEnv_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "canbridge.yaml")
	body := []byte(`
vehicle_id: sailboat-7
node_id: 5
tick_rate: 200
mqtt_broker: broker.local
simulation: true
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TICK_RATE", "25")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.VehicleID != "sailboat-7" {
		t.Errorf("VehicleID = %q, want sailboat-7", got.VehicleID)
	}
	if got.NodeID != 5 {
		t.Errorf("NodeID = %d, want 5", got.NodeID)
	}
	if got.TickRate != 25 {
		t.Errorf("TickRate = %d, want 25 (env wins over file)", got.TickRate)
	}
	if got.MQTTBroker != "broker.local" || !got.Simulation {
		t.Errorf("MQTTBroker = %q Simulation = %v", got.MQTTBroker, got.Simulation)
	}
}

func TestLoadFromEnv_ConfigFileErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadFromEnv(); err == nil {
		t.Error("missing CONFIG_FILE: error = nil")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("tick_rate: [1, 2"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := LoadFromEnv(); err == nil {
		t.Error("malformed CONFIG_FILE: error = nil")
	}
}
