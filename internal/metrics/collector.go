// Package metrics exposes dispatch counters and sensor availability to
// Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"canbridge/internal/availability"
	"canbridge/internal/dispatch"
)

const namespace = "canbridge"

// Collector reads the dispatcher at scrape time. The tick loop feeds
// ObserveTick for the duration histogram.
type Collector struct {
	d        *dispatch.Dispatcher
	queueLen func() int64

	ticks          *prometheus.Desc
	framesSeen     *prometheus.Desc
	framesHandled  *prometheus.Desc
	framesRejected *prometheus.Desc
	partial        *prometheus.Desc
	capHits        *prometheus.Desc
	routeFrames    *prometheus.Desc
	queueLength    *prometheus.Desc
	simulation     *prometheus.Desc
	enabled        *prometheus.Desc
	active         *prometheus.Desc

	tickDuration prometheus.Histogram
}

// NewCollector returns a collector over d. queueLen may be nil.
func NewCollector(d *dispatch.Dispatcher, queueLen func() int64) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		d:              d,
		queueLen:       queueLen,
		ticks:          desc("dispatch_ticks_total", "Dispatch ticks run."),
		framesSeen:     desc("frames_seen_total", "Frames popped from the receive queue."),
		framesHandled:  desc("frames_handled_total", "Frames that matched a route."),
		framesRejected: desc("frames_rejected_total", "Frames with no route."),
		partial:        desc("partial_decodes_total", "Routed frames discarded because a required field failed to decode."),
		capHits:        desc("dispatch_cap_hits_total", "Ticks that stopped at the per-tick frame cap."),
		routeFrames:    desc("route_frames_total", "Frames per route.", "route"),
		queueLength:    desc("rx_queue_length", "Frames waiting in the receive queue."),
		simulation:     desc("simulation_enabled", "1 when navigation frames from the bus are suppressed."),
		enabled:        desc("sensor_enabled", "1 when the sensor is present on the bus.", "sensor"),
		active:         desc("sensor_active", "1 when the sensor is producing valid data.", "sensor"),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_tick_duration_seconds",
			Help:      "Time spent in one dispatch tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 12),
		}),
	}
}

func (c *Collector) ObserveTick(d time.Duration) {
	c.tickDuration.Observe(d.Seconds())
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.ticks, c.framesSeen, c.framesHandled, c.framesRejected, c.partial,
		c.capHits, c.routeFrames, c.queueLength, c.simulation, c.enabled, c.active,
	} {
		ch <- d
	}
	c.tickDuration.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.d.Stats()
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	counter(c.ticks, s.Ticks)
	counter(c.framesSeen, s.FramesSeen)
	counter(c.framesHandled, s.FramesHandled)
	counter(c.framesRejected, s.FramesRejected)
	counter(c.partial, s.PartialDecodes)
	counter(c.capHits, s.CapHits)
	for r := dispatch.RouteNone + 1; r < dispatch.NumRoutes; r++ {
		counter(c.routeFrames, s.RouteFrames[r], r.String())
	}

	if c.queueLen != nil {
		gauge(c.queueLength, float64(c.queueLen()))
	}
	gauge(c.simulation, boolFloat(c.d.Simulation()))

	for i, e := range c.d.Tracker().Snapshot() {
		name := availability.Sensor(i).String()
		gauge(c.enabled, boolFloat(e.Enabled), name)
		gauge(c.active, boolFloat(e.Active), name)
	}

	c.tickDuration.Collect(ch)
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
