package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"canbridge/internal/availability"
	"canbridge/internal/bus"
	"canbridge/internal/config"
	"canbridge/internal/db"
	"canbridge/internal/dispatch"
	"canbridge/internal/envsensor"
	"canbridge/internal/httpapi"
	"canbridge/internal/metrics"
	"canbridge/internal/mqtt"
	"canbridge/internal/sensors"
	"canbridge/internal/status"
	"canbridge/internal/telemetry"
)

// source produces received frames into the queue until ctx ends.
type source interface {
	Run(ctx context.Context, q *bus.Queue) error
}

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"nodeId", cfg.NodeID,
		"vehicleId", cfg.VehicleID,
		"busMode", cfg.BusMode,
		"canInterface", cfg.CANInterface,
		"replayPath", cfg.ReplayPath,
		"tickRate", cfg.TickRate,
		"maxFramesPerTick", cfg.DispatchMaxFrames,
		"httpAddr", cfg.HTTPAddr,
		"mqttBroker", cfg.MQTTBroker,
		"simulation", cfg.Simulation,
	)

	q := bus.NewQueue(cfg.RxQueueHint)
	defer q.Close()

	src, sender, closeBus, err := openBus(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBus.Close(); err != nil {
			logger.Error("bus close", "error", err)
		}
	}()

	d := dispatch.New(dispatch.Config{MaxFramesPerTick: cfg.DispatchMaxFrames}, q,
		sensors.NewStore(), availability.NewTracker(), logger.With("component", "dispatch"))
	d.SetSimulation(cfg.Simulation)

	collector := metrics.NewCollector(d, q.Len)
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var temp status.TemperatureSource
	if cfg.BME280Address != 0 {
		bme, err := envsensor.Open(cfg.BME280Address)
		if err != nil {
			logger.Warn("bme280 unavailable (continuing without board temperature)", "error", err)
		} else {
			temp = bme
			defer func() { _ = bme.Close() }()
		}
	}
	beacon := status.NewBeacon(status.Options{
		NodeID:      cfg.NodeID,
		Interval:    cfg.StatusInterval,
		TickPeriod:  cfg.TickPeriod(),
		Temperature: temp,
	}, d, sender, logger.With("component", "status"))

	var mqttClient *mqtt.Client
	if cfg.MQTTBroker != "" {
		mqttClient = mqtt.NewClient(mqtt.Options{
			Broker:    cfg.MQTTBroker,
			Port:      cfg.MQTTPort,
			ClientID:  cfg.MQTTClientID,
			VehicleID: cfg.VehicleID,
		}, logger.With("component", "mqtt"))

		// Short timeout so a missing broker does not hold up the bus.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = mqttClient.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewMux(d, reg), logger.With("component", "http"))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 6)
	spawn := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Errors after cancellation are shutdown noise.
			if err := fn(runCtx); err != nil && runCtx.Err() == nil {
				errCh <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	spawn("bus", func(ctx context.Context) error { return src.Run(ctx, q) })
	spawn("dispatch", func(ctx context.Context) error {
		return tickLoop(ctx, cfg.TickPeriod(), d, collector)
	})
	spawn("status", beacon.Run)
	if mqttClient != nil {
		svc := telemetry.NewService(cfg.VehicleID, cfg.TelemetryInterval, d, mqttClient, logger.With("component", "telemetry"))
		spawn("telemetry", svc.Run)
	}

	httpErr := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		httpErr <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	case err := <-httpErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http: %w", err)
		}
	}

	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if mqttClient != nil {
		logger.Info("mqtt disconnecting")
		mqttClient.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	if runErr != nil {
		return runErr
	}
	return ctx.Err()
}

// tickLoop runs the dispatcher at a fixed period. A tick that overruns its
// period delays the next one; missed ticks are dropped, never queued.
func tickLoop(ctx context.Context, period time.Duration, d *dispatch.Dispatcher, c *metrics.Collector) error {
	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			d.Tick()
			c.ObserveTick(d.Stats().LastTickDuration)
		}
	}
}

func openBus(ctx context.Context, cfg config.Config, logger *slog.Logger) (source, bus.Sender, io.Closer, error) {
	switch cfg.BusMode {
	case config.BusReplay:
		conn, err := db.Open(db.Options{
			Path:     cfg.ReplayPath,
			ReadOnly: true,
			TraceSQL: cfg.TraceSQL,
			Logger:   logger.With("component", "db"),
		})
		if err != nil {
			return nil, nil, nil, err
		}
		repo := db.NewCaptureRepository(conn)
		if iface, ok, err := repo.Meta(ctx, "interface"); err == nil && ok {
			logger.Info("replaying capture", "path", cfg.ReplayPath, "recorded_on", iface)
		}
		replay := bus.NewReplay(repo, logger.With("component", "replay"),
			bus.WithLoop(cfg.ReplayLoop), bus.WithSpeed(cfg.ReplaySpeed))
		return replay, bus.NewLogSender(logger.With("component", "tx")), conn, nil

	default:
		sc, err := bus.DialSocketCAN(ctx, cfg.CANInterface, logger.With("component", "socketcan"))
		if err != nil {
			return nil, nil, nil, err
		}
		return sc, sc, sc, nil
	}
}
