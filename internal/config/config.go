package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type BusMode string

const (
	BusSocketCAN BusMode = "socketcan"
	BusReplay    BusMode = "replay"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	LogFile  string

	NodeID    uint8
	VehicleID string

	BusMode      BusMode
	CANInterface string
	ReplayPath   string
	ReplayLoop   bool
	ReplaySpeed  float64

	TickRate          int
	DispatchMaxFrames int
	RxQueueHint       int64

	StatusInterval    time.Duration
	TelemetryInterval time.Duration

	HTTPAddr string

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string

	// BME280Address of zero disables the onboard temperature sensor.
	BME280Address uint16
	Simulation    bool
	TraceSQL      bool
}

// TickPeriod is the dispatch period derived from TickRate.
func (c Config) TickPeriod() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// fileConfig is the optional YAML file. Every key is a string so values go
// through the same parsing as the environment.
type fileConfig map[string]string

// LoadFromEnv reads configuration from the environment. When CONFIG_FILE
// names a YAML file, its keys (same names as the variables) supply values
// for variables that are unset.
func LoadFromEnv() (Config, error) {
	file, err := loadFile(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return Config{}, err
	}
	get := func(key, def string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		if v := strings.TrimSpace(file[key]); v != "" {
			return v
		}
		return def
	}

	appEnv := get("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	nodeIDStr := get("NODE_ID", "1")
	nodeID, err := strconv.ParseUint(nodeIDStr, 0, 8)
	if err != nil {
		return Config{}, fmt.Errorf("invalid NODE_ID %q: %w", nodeIDStr, err)
	}

	busMode := BusMode(strings.ToLower(get("BUS_MODE", string(BusSocketCAN))))
	switch busMode {
	case BusSocketCAN, BusReplay:
	default:
		return Config{}, fmt.Errorf("invalid BUS_MODE %q (allowed: socketcan, replay)", busMode)
	}

	replayPath := get("REPLAY_PATH", "")
	if busMode == BusReplay && replayPath == "" {
		return Config{}, fmt.Errorf("REPLAY_PATH is required when BUS_MODE=replay")
	}
	replayLoop, err := parseBool("REPLAY_LOOP", get("REPLAY_LOOP", "true"))
	if err != nil {
		return Config{}, err
	}
	replaySpeedStr := get("REPLAY_SPEED", "1")
	replaySpeed, err := strconv.ParseFloat(replaySpeedStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REPLAY_SPEED %q: %w", replaySpeedStr, err)
	}

	tickRate, err := positiveInt("TICK_RATE", get("TICK_RATE", "100"))
	if err != nil {
		return Config{}, err
	}
	if tickRate > 1000 {
		return Config{}, fmt.Errorf("TICK_RATE must be <= 1000, got %d", tickRate)
	}
	maxFrames, err := positiveInt("DISPATCH_MAX_FRAMES", get("DISPATCH_MAX_FRAMES", "32"))
	if err != nil {
		return Config{}, err
	}
	queueHint, err := positiveInt("RX_QUEUE_HINT", get("RX_QUEUE_HINT", "256"))
	if err != nil {
		return Config{}, err
	}

	statusInterval, err := positiveDuration("STATUS_INTERVAL", get("STATUS_INTERVAL", "1s"))
	if err != nil {
		return Config{}, err
	}
	telemetryInterval, err := positiveDuration("TELEMETRY_INTERVAL", get("TELEMETRY_INTERVAL", "1s"))
	if err != nil {
		return Config{}, err
	}

	mqttPortStr := get("MQTT_PORT", "1883")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	bme280AddressStr := get("BME280_ADDRESS", "0")
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	simulation, err := parseBool("SIMULATION", get("SIMULATION", "false"))
	if err != nil {
		return Config{}, err
	}
	traceSQL, err := parseBool("TRACE_SQL", get("TRACE_SQL", "false"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:            appEnv,
		LogLevel:          level,
		LogFile:           get("LOG_FILE", ""),
		NodeID:            uint8(nodeID),
		VehicleID:         get("VEHICLE_ID", "boat"),
		BusMode:           busMode,
		CANInterface:      get("CAN_INTERFACE", "can0"),
		ReplayPath:        replayPath,
		ReplayLoop:        replayLoop,
		ReplaySpeed:       replaySpeed,
		TickRate:          tickRate,
		DispatchMaxFrames: maxFrames,
		RxQueueHint:       int64(queueHint),
		StatusInterval:    statusInterval,
		TelemetryInterval: telemetryInterval,
		HTTPAddr:          get("HTTP_ADDR", ":8080"),
		MQTTBroker:        get("MQTT_BROKER", ""),
		MQTTPort:          mqttPort,
		MQTTClientID:      get("MQTT_CLIENT_ID", "canbridge"),
		BME280Address:     uint16(bme280Address),
		Simulation:        simulation,
		TraceSQL:          traceSQL,
	}, nil
}

func loadFile(path string) (fileConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}
	out := make(fileConfig, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		out[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return out, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func parseBool(key, s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func positiveInt(key, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func positiveDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}
