package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"canbridge/internal/types"
)

const publishTimeout = 5 * time.Second

type Options struct {
	Broker   string
	Port     int
	ClientID string
	// VehicleID selects the topic prefix vehicles/<id>/.
	VehicleID string
}

type Client struct {
	client    mqtt.Client
	opts      Options
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(o Options, logger *slog.Logger) *Client {
	c := &Client{
		opts:   o,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", o.Broker, o.Port))
	opts.SetClientID(o.ClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Broker drops the retained health to unhealthy if we vanish.
	will, _ := json.Marshal(types.Health{VehicleID: o.VehicleID})
	opts.SetBinaryWill(HealthTopic(o.VehicleID), will, 1, true)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", o.Broker, "port", o.Port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

func TelemetryTopic(vehicleID string) string {
	return fmt.Sprintf("vehicles/%s/telemetry", vehicleID)
}

func HealthTopic(vehicleID string) string {
	return fmt.Sprintf("vehicles/%s/health", vehicleID)
}

// Connect waits for the initial connection. It respects ctx and Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return fmt.Errorf("client stopped")
	default:
	}

	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return fmt.Errorf("client stopped")
		default:
		}
	}
}

// PublishTelemetry sends t to vehicles/<id>/telemetry at QoS 1.
func (c *Client) PublishTelemetry(t types.Telemetry) error {
	if t.VehicleID == "" {
		t.VehicleID = c.opts.VehicleID
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	if err := c.publish(TelemetryTopic(t.VehicleID), false, t); err != nil {
		return fmt.Errorf("publish telemetry: %w", err)
	}
	c.logger.Debug("published telemetry", "vehicle_id", t.VehicleID, "sequence", t.Sequence)
	return nil
}

// PublishHealth sends h retained to vehicles/<id>/health.
func (c *Client) PublishHealth(h types.Health) error {
	if h.VehicleID == "" {
		h.VehicleID = c.opts.VehicleID
	}
	if h.LastSeen.IsZero() {
		h.LastSeen = time.Now()
	}
	if err := c.publish(HealthTopic(h.VehicleID), true, h); err != nil {
		return fmt.Errorf("publish health: %w", err)
	}
	c.logger.Debug("published health",
		"vehicle_id", h.VehicleID,
		"last_seen", h.LastSeen,
		"healthy", h.Healthy,
	)
	return nil
}

func (c *Client) publish(topic string, retained bool, v any) error {
	if !c.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	token := c.client.Publish(topic, 1, retained, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		c.logger.Error("mqtt publish failed", "topic", topic, "error", err)
		return err
	}
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client. It is idempotent; Connect fails afterwards.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })

	if c.client != nil {
		c.client.Disconnect(250)
	}

	c.setConnected(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
