package dispatch

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"canbridge/internal/availability"
	"canbridge/internal/can"
	"canbridge/internal/nmea2000"
	"canbridge/internal/sensors"
)

type fakeQueue struct {
	frames []can.Frame
	// drained runs when Pop finds the queue empty.
	drained func()
}

func (q *fakeQueue) Push(f ...can.Frame) { q.frames = append(q.frames, f...) }

func (q *fakeQueue) Len() int64 { return int64(len(q.frames)) }

func (q *fakeQueue) Pop() (can.Frame, bool) {
	if len(q.frames) == 0 {
		if q.drained != nil {
			q.drained()
		}
		return can.Frame{}, false
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f, true
}

func newTestDispatcher(t *testing.T, maxFrames int) (*Dispatcher, *fakeQueue) {
	t.Helper()
	q := &fakeQueue{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := New(Config{MaxFramesPerTick: maxFrames}, q, sensors.NewStore(), availability.NewTracker(), logger)
	return d, q
}

func n2k(pgn nmea2000.PGN, payload []byte) can.Frame {
	return nmea2000.Frame(nmea2000.Header{Priority: 2, PGN: pgn, Source: 0x17, Destination: nmea2000.AddressGlobal}, payload)
}

func propulsion(rpm int16, inactive bool) can.Frame {
	data := []byte{byte(uint16(rpm) >> 8), byte(rpm), 0, 0, 0, 0, 0, 0}
	if inactive {
		data[6] = 0x40
	}
	return can.NewFrame(IDPropulsionStatus, data)
}

func TestPartialPositionLeavesStoreUntouched(t *testing.T) {
	d, q := newTestDispatcher(t, 0)

	data := nmea2000.PositionRapidPayload(nmea2000.PositionRapid{Latitude: 45})
	data[4], data[5], data[6], data[7] = 0xFF, 0xFF, 0xFF, 0x7F
	q.Push(n2k(nmea2000.PGNPositionRapid, data))

	if got := d.Tick(); got != 1 {
		t.Errorf("Tick() = %d, want 1", got)
	}
	snap := d.Store().Peek()
	if snap.Navigation.Fresh || snap.Navigation.Value != (sensors.Navigation{}) {
		t.Errorf("navigation = %+v, want untouched", snap.Navigation)
	}
	e := d.Tracker().Entry(availability.GPS)
	if e.Enabled || e.EnabledCounter != availability.Threshold || e.ActiveCounter != availability.Threshold {
		t.Errorf("gps entry = %+v, want counters untouched", e)
	}
	if st := d.Stats(); st.PartialDecodes != 1 || st.FramesHandled != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestPositionEnablesGPS(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	q.Push(n2k(nmea2000.PGNPositionRapid, nmea2000.PositionRapidPayload(nmea2000.PositionRapid{Latitude: 45.5, Longitude: -122.25})))

	if e := d.Tracker().Entry(availability.GPS); e.Enabled {
		t.Fatal("gps enabled before any traffic")
	}
	d.Tick()

	e := d.Tracker().Entry(availability.GPS)
	if !e.Enabled || !e.Active {
		t.Errorf("gps entry = %+v, want enabled and active", e)
	}
	nav, fresh := d.Store().Navigation()
	if !fresh || nav.Latitude != 45.5 || nav.Longitude != -122.25 {
		t.Errorf("navigation = %+v fresh=%v", nav, fresh)
	}
}

func TestSimulationSuppressesNavigation(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	d.Store().SetPosition(1, 2)
	d.SetSimulation(true)
	d.Tick()

	if _, fresh := d.Store().Navigation(); fresh {
		t.Fatal("entering simulation did not clear navigation")
	}

	q.Push(
		n2k(nmea2000.PGNPositionRapid, nmea2000.PositionRapidPayload(nmea2000.PositionRapid{Latitude: 10, Longitude: 20})),
		n2k(nmea2000.PGNCOGSOGRapid, nmea2000.COGSOGRapidPayload(nmea2000.COGSOGRapid{COG: 1, SOG: 2})),
	)
	if got := d.Tick(); got != 2 {
		t.Errorf("Tick() = %d, want 2 handled", got)
	}
	if snap := d.Store().Peek(); snap.Navigation.Fresh || snap.Navigation.Value.Latitude != 0 {
		t.Errorf("navigation = %+v, want suppressed", snap.Navigation)
	}
	if d.Tracker().Entry(availability.GPS).Enabled {
		t.Error("gps enabled by suppressed frames")
	}

	d.SetSimulation(false)
	q.Push(n2k(nmea2000.PGNPositionRapid, nmea2000.PositionRapidPayload(nmea2000.PositionRapid{Latitude: 10, Longitude: 20})))
	d.Tick()
	if nav, fresh := d.Store().Navigation(); !fresh || nav.Latitude != 10 {
		t.Errorf("navigation after simulation = %+v fresh=%v", nav, fresh)
	}
}

func TestSimulationDiscardsFixFromRunningTick(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	q.Push(n2k(nmea2000.PGNPositionRapid, nmea2000.PositionRapidPayload(nmea2000.PositionRapid{Latitude: 10, Longitude: 20})))
	// Switch while the tick that handled the fix is still draining.
	q.drained = func() {
		q.drained = nil
		d.SetSimulation(true)
	}
	d.Tick()

	d.Tick()
	if snap := d.Store().Peek(); snap.Navigation.Fresh || snap.Navigation.Value.Latitude != 0 {
		t.Errorf("navigation = %+v, want cleared after switching to simulation", snap.Navigation)
	}
}

func TestFrameCap(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	for i := 0; i < DefaultMaxFramesPerTick+8; i++ {
		q.Push(propulsion(int16(i), false))
	}

	if got := d.Tick(); got != DefaultMaxFramesPerTick {
		t.Fatalf("first Tick() = %d, want %d", got, DefaultMaxFramesPerTick)
	}
	if len(q.frames) != 8 {
		t.Errorf("left in queue = %d, want 8", len(q.frames))
	}
	if got := d.Tick(); got != 8 {
		t.Errorf("second Tick() = %d, want 8", got)
	}
	if got := d.Tick(); got != 0 {
		t.Errorf("empty Tick() = %d, want 0", got)
	}

	st := d.Stats()
	if st.Ticks != 3 || st.CapHits != 1 || st.FramesSeen != DefaultMaxFramesPerTick+8 {
		t.Errorf("stats = %+v", st)
	}
	if th, _ := d.Store().Throttle(); th.RPM != DefaultMaxFramesPerTick+7 {
		t.Errorf("rpm = %d, want last frame's value", th.RPM)
	}
}

func TestCapHitOnlyWhenFramesRemain(t *testing.T) {
	d, q := newTestDispatcher(t, 4)
	for i := 0; i < 4; i++ {
		q.Push(propulsion(int16(i), false))
	}
	d.Tick()
	if st := d.Stats(); st.CapHits != 0 {
		t.Errorf("cap hits = %d after draining exactly the cap, want 0", st.CapHits)
	}

	for i := 0; i < 5; i++ {
		q.Push(propulsion(int16(i), false))
	}
	d.Tick()
	if st := d.Stats(); st.CapHits != 1 {
		t.Errorf("cap hits = %d with a frame left over, want 1", st.CapHits)
	}
}

func TestRejectedFrames(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	q.Push(
		can.NewFrame(0x123, []byte{1, 2}),
		n2k(60928, make([]byte, 8)),
		can.NewExtendedFrame(IDPropulsionStatus, make([]byte, 8)),
	)

	if got := d.Tick(); got != 0 {
		t.Errorf("Tick() = %d, want 0", got)
	}
	if st := d.Stats(); st.FramesRejected != 3 || st.FramesSeen != 3 || st.FramesHandled != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestClassify(t *testing.T) {
	d, _ := newTestDispatcher(t, 0)
	tests := []struct {
		frame can.Frame
		want  Route
	}{
		{frame: propulsion(0, false), want: RoutePropulsion},
		{frame: n2k(nmea2000.PGNSystemTime, nil), want: RouteSystemTime},
		{frame: n2k(nmea2000.PGNRudder, nil), want: RouteRudder},
		{frame: n2k(nmea2000.PGNVesselHeading, nil), want: RouteVesselHeading},
		{frame: n2k(nmea2000.PGNBatteryStatus, nil), want: RouteBatteryStatus},
		{frame: n2k(nmea2000.PGNSpeed, nil), want: RouteSpeed},
		{frame: n2k(nmea2000.PGNWaterDepth, nil), want: RouteWaterDepth},
		{frame: n2k(nmea2000.PGNPositionRapid, nil), want: RoutePositionRapid},
		{frame: n2k(nmea2000.PGNCOGSOGRapid, nil), want: RouteCOGSOGRapid},
		{frame: n2k(nmea2000.PGNWindData, nil), want: RouteWindData},
		{frame: n2k(nmea2000.PGNEnvironmental, nil), want: RouteEnvironmental},
		{frame: n2k(nmea2000.PGNEnvironmentalHumidity, nil), want: RouteEnvironmentalHumidity},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := d.Classify(tt.frame); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.frame, got, tt.want)
			}
		})
	}
}

func TestPropulsionActiveBit(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	q.Push(propulsion(1500, true))
	d.Tick()

	e := d.Tracker().Entry(availability.Propulsion)
	if !e.Enabled || e.Active {
		t.Errorf("entry = %+v, want enabled but inactive", e)
	}
	if th, fresh := d.Store().Throttle(); !fresh || th.RPM != 1500 {
		t.Errorf("throttle = %+v fresh=%v", th, fresh)
	}

	q.Push(propulsion(-20, false))
	d.Tick()
	if e := d.Tracker().Entry(availability.Propulsion); !e.Active {
		t.Errorf("entry = %+v, want active", e)
	}
}

func TestPropulsionSilenceScenario(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	q.Push(propulsion(900, false))
	d.Tick()
	if e := d.Tracker().Entry(availability.Propulsion); !e.Enabled || e.EnabledCounter != 0 {
		t.Fatalf("entry = %+v, want enabled with counter 0", e)
	}

	for i := 0; i < 12; i++ {
		d.Tick()
	}
	if !d.Tracker().Entry(availability.Propulsion).Enabled {
		t.Fatal("disabled after 12 silent ticks")
	}
	for i := 12; i < 99; i++ {
		d.Tick()
	}
	if !d.Tracker().Entry(availability.Propulsion).Enabled {
		t.Fatal("disabled after 99 silent ticks")
	}
	d.Tick()
	if d.Tracker().Entry(availability.Propulsion).Enabled {
		t.Error("still enabled after 100 silent ticks")
	}
}

func TestWindAppliesAnyField(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	d.Store().SetWindDirection(2)
	d.Store().Wind()

	data := nmea2000.WindDataPayload(nmea2000.WindData{Speed: 6.5})
	data[3], data[4] = 0xFF, 0xFF
	q.Push(n2k(nmea2000.PGNWindData, data))
	d.Tick()

	w, fresh := d.Store().Wind()
	if !fresh || w.Speed != 6.5 || w.Direction != 2 {
		t.Errorf("wind = %+v fresh=%v, want speed only updated", w, fresh)
	}
	if e := d.Tracker().Entry(availability.Anemometer); !e.Enabled || !e.Active {
		t.Errorf("anemometer = %+v", e)
	}
}

func TestWaterTemperatureNeverActivates(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	q.Push(n2k(nmea2000.PGNEnvironmental, nmea2000.EnvironmentalPayload(nmea2000.Environmental{WaterTemp: 12})))
	d.Tick()

	e := d.Tracker().Entry(availability.SpeedDepth)
	if !e.Enabled || e.Active {
		t.Errorf("speed/depth = %+v, want enabled only", e)
	}

	q.Push(n2k(nmea2000.PGNWaterDepth, nmea2000.WaterDepthPayload(nmea2000.WaterDepth{Depth: 8})))
	d.Tick()
	if e := d.Tracker().Entry(availability.SpeedDepth); !e.Active {
		t.Errorf("speed/depth = %+v, want active after depth", e)
	}
	w, _ := d.Store().Water()
	if w.Depth != 8 || w.Temperature < 11.99 || w.Temperature > 12.01 {
		t.Errorf("water = %+v", w)
	}
}

func TestOtherRoutes(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	ts := time.Date(2025, 6, 1, 8, 0, 5, 0, time.UTC)
	q.Push(
		n2k(nmea2000.PGNSystemTime, nmea2000.SystemTimePayload(1, 0, ts)),
		n2k(nmea2000.PGNRudder, nmea2000.RudderPayload(nmea2000.Rudder{Position: -0.5})),
		n2k(nmea2000.PGNVesselHeading, nmea2000.VesselHeadingPayload(nmea2000.VesselHeading{Heading: 1.5})),
		n2k(nmea2000.PGNBatteryStatus, nmea2000.BatteryStatusPayload(nmea2000.BatteryStatus{Voltage: 24.5, Current: 3})),
		n2k(nmea2000.PGNSpeed, nmea2000.SpeedPayload(nmea2000.Speed{WaterSpeed: 2.5})),
		n2k(nmea2000.PGNEnvironmentalHumidity, nmea2000.EnvironmentalHumidityPayload(nmea2000.EnvironmentalHumidity{Temperature: 20, Humidity: 50, AtmosphericPres: 1000})),
	)
	if got := d.Tick(); got != 6 {
		t.Fatalf("Tick() = %d, want 6", got)
	}

	if dt, fresh := d.Store().DateTime(); !fresh || dt.Year != 2025 || dt.Hour != 8 || dt.Second != 5 {
		t.Errorf("date time = %+v fresh=%v", dt, fresh)
	}
	if r, fresh := d.Store().Rudder(); !fresh || r.Position != -0.5 {
		t.Errorf("rudder = %+v fresh=%v", r, fresh)
	}
	if h, fresh := d.Store().Heading(); !fresh || h.Heading != 1.5 {
		t.Errorf("heading = %+v fresh=%v", h, fresh)
	}
	if p, fresh := d.Store().Power(); !fresh || p.Voltage != 24.5 || p.Current != 3 {
		t.Errorf("power = %+v fresh=%v", p, fresh)
	}
	if w, fresh := d.Store().Water(); !fresh || w.Speed != 2.5 {
		t.Errorf("water = %+v fresh=%v", w, fresh)
	}
	if a, fresh := d.Store().Air(); !fresh || a.Humidity != 50 || a.Pressure != 1000 {
		t.Errorf("air = %+v fresh=%v", a, fresh)
	}

	for _, s := range []availability.Sensor{availability.GPS, availability.HeadingRef, availability.Power, availability.Anemometer} {
		if e := d.Tracker().Entry(s); !e.Enabled || !e.Active {
			t.Errorf("%v = %+v, want enabled and active", s, e)
		}
	}
	for _, s := range []availability.Sensor{availability.Propulsion, availability.SpeedDepth} {
		if d.Tracker().Entry(s).Enabled {
			t.Errorf("%v enabled without its own traffic", s)
		}
	}
}

func TestWaterSpeedFeedsAnemometerOnly(t *testing.T) {
	d, q := newTestDispatcher(t, 0)
	q.Push(n2k(nmea2000.PGNSpeed, nmea2000.SpeedPayload(nmea2000.Speed{WaterSpeed: 2.5})))
	d.Tick()

	if e := d.Tracker().Entry(availability.Anemometer); !e.Enabled || !e.Active {
		t.Errorf("anemometer = %+v, want enabled and active", e)
	}
	if e := d.Tracker().Entry(availability.SpeedDepth); e.Enabled || e.Active {
		t.Errorf("speed_depth = %+v, want untouched without a depth reading", e)
	}
	if w, fresh := d.Store().Water(); !fresh || w.Speed != 2.5 {
		t.Errorf("water = %+v fresh=%v", w, fresh)
	}
}
