package dispatch

import (
	"encoding/binary"

	"canbridge/internal/availability"
	"canbridge/internal/nmea2000"
	"canbridge/internal/sensors"
)

// Route names a frame class the dispatcher knows how to handle.
type Route uint8

const (
	RouteNone Route = iota
	RoutePropulsion
	RouteSystemTime
	RouteRudder
	RouteVesselHeading
	RouteBatteryStatus
	RouteSpeed
	RouteWaterDepth
	RoutePositionRapid
	RouteCOGSOGRapid
	RouteWindData
	RouteEnvironmental
	RouteEnvironmentalHumidity

	NumRoutes
)

var routeNames = [NumRoutes]string{
	RouteNone:                  "none",
	RoutePropulsion:            "propulsion",
	RouteSystemTime:            "system_time",
	RouteRudder:                "rudder",
	RouteVesselHeading:         "vessel_heading",
	RouteBatteryStatus:         "battery_status",
	RouteSpeed:                 "speed",
	RouteWaterDepth:            "water_depth",
	RoutePositionRapid:         "position_rapid",
	RouteCOGSOGRapid:           "cog_sog_rapid",
	RouteWindData:              "wind_data",
	RouteEnvironmental:         "environmental",
	RouteEnvironmentalHumidity: "environmental_humidity",
}

func (r Route) String() string {
	if r >= NumRoutes {
		return "unknown"
	}
	return routeNames[r]
}

// Standard-frame identifiers matched before PGN decoding.
const (
	IDPropulsionStatus uint32 = 0x402

	propulsionInactiveBit = 0x40
)

// handler applies one frame. It returns false when required fields failed to
// decode, in which case nothing was written.
type handler func(d *Dispatcher, data []byte) bool

func directRoutes() map[uint32]Route {
	return map[uint32]Route{
		IDPropulsionStatus: RoutePropulsion,
	}
}

func pgnRoutes() map[nmea2000.PGN]Route {
	return map[nmea2000.PGN]Route{
		nmea2000.PGNSystemTime:            RouteSystemTime,
		nmea2000.PGNRudder:                RouteRudder,
		nmea2000.PGNVesselHeading:         RouteVesselHeading,
		nmea2000.PGNBatteryStatus:         RouteBatteryStatus,
		nmea2000.PGNSpeed:                 RouteSpeed,
		nmea2000.PGNWaterDepth:            RouteWaterDepth,
		nmea2000.PGNPositionRapid:         RoutePositionRapid,
		nmea2000.PGNCOGSOGRapid:           RouteCOGSOGRapid,
		nmea2000.PGNWindData:              RouteWindData,
		nmea2000.PGNEnvironmental:         RouteEnvironmental,
		nmea2000.PGNEnvironmentalHumidity: RouteEnvironmentalHumidity,
	}
}

func handlers() [NumRoutes]handler {
	return [NumRoutes]handler{
		RouteNone:                  func(*Dispatcher, []byte) bool { return false },
		RoutePropulsion:            handlePropulsion,
		RouteSystemTime:            handleSystemTime,
		RouteRudder:                handleRudder,
		RouteVesselHeading:         handleVesselHeading,
		RouteBatteryStatus:         handleBatteryStatus,
		RouteSpeed:                 handleSpeed,
		RouteWaterDepth:            handleWaterDepth,
		RoutePositionRapid:         handlePositionRapid,
		RouteCOGSOGRapid:           handleCOGSOGRapid,
		RouteWindData:              handleWindData,
		RouteEnvironmental:         handleEnvironmental,
		RouteEnvironmentalHumidity: handleEnvironmentalHumidity,
	}
}

// seen resets both counters for s, or only the enabled one when valid is
// false.
func (d *Dispatcher) seen(s availability.Sensor, valid bool) {
	d.tracker.ResetEnabled(s)
	if valid {
		d.tracker.ResetActive(s)
	}
}

// Propulsion controller status: rpm big-endian in bytes 0-1, byte 6 bit 6
// set while the drive is inactive.
func handlePropulsion(d *Dispatcher, data []byte) bool {
	if len(data) < 7 {
		return false
	}
	d.store.SetThrottle(int16(binary.BigEndian.Uint16(data[0:2])))
	d.seen(availability.Propulsion, data[6]&propulsionInactiveBit == 0)
	return true
}

func handleSystemTime(d *Dispatcher, data []byte) bool {
	st, ok := nmea2000.ParseSystemTime(data, nmea2000.SystemTimeCalendar|nmea2000.SystemTimeUsecSinceEpoch)
	if !ok.HasAll(nmea2000.SystemTimeCalendar) {
		return false
	}
	d.store.SetDateTime(sensors.DateTime{
		Year:           st.Year,
		Month:          st.Month,
		Day:            st.Day,
		Hour:           st.Hour,
		Minute:         st.Minute,
		Second:         st.Second,
		UsecSinceEpoch: st.UsecSinceEpoch,
	})
	d.seen(availability.GPS, true)
	return true
}

// Rudder angle comes from the steering node, which has no tracker entry.
func handleRudder(d *Dispatcher, data []byte) bool {
	r, ok := nmea2000.ParseRudder(data, nmea2000.RudderPosition)
	if !ok.Has(nmea2000.RudderPosition) {
		return false
	}
	d.store.SetRudder(float32(r.Position))
	return true
}

func handleVesselHeading(d *Dispatcher, data []byte) bool {
	const want = nmea2000.VesselHeadingHeading | nmea2000.VesselHeadingDeviation | nmea2000.VesselHeadingVariation
	h, ok := nmea2000.ParseVesselHeading(data, want)
	if !ok.Has(nmea2000.VesselHeadingHeading) {
		return false
	}
	d.store.SetHeading(sensors.Heading{
		Heading:   float32(h.Heading),
		Deviation: float32(h.Deviation),
		Variation: float32(h.Variation),
	})
	d.seen(availability.HeadingRef, true)
	return true
}

func handleBatteryStatus(d *Dispatcher, data []byte) bool {
	const required = nmea2000.BatteryVoltage | nmea2000.BatteryCurrent
	bs, ok := nmea2000.ParseBatteryStatus(data, required|nmea2000.BatteryTemperature)
	if !ok.HasAll(required) {
		return false
	}
	d.store.SetPower(sensors.Power{
		Voltage:     float32(bs.Voltage),
		Current:     float32(bs.Current),
		Temperature: float32(bs.Temperature),
	})
	d.seen(availability.Power, true)
	return true
}

func handleSpeed(d *Dispatcher, data []byte) bool {
	s, ok := nmea2000.ParseSpeed(data, nmea2000.SpeedWater)
	if !ok.Has(nmea2000.SpeedWater) {
		return false
	}
	d.store.SetWaterSpeed(float32(s.WaterSpeed))
	// Water speed comes from the weather station paddle wheel, not the
	// depth transducer.
	d.seen(availability.Anemometer, true)
	return true
}

func handleWaterDepth(d *Dispatcher, data []byte) bool {
	w, ok := nmea2000.ParseWaterDepth(data, nmea2000.WaterDepthDepth)
	if !ok.Has(nmea2000.WaterDepthDepth) {
		return false
	}
	d.store.SetWaterDepth(float32(w.Depth))
	d.seen(availability.SpeedDepth, true)
	return true
}

func handlePositionRapid(d *Dispatcher, data []byte) bool {
	if d.Simulation() {
		return true
	}
	const required = nmea2000.PositionLatitude | nmea2000.PositionLongitude
	p, ok := nmea2000.ParsePositionRapid(data, required)
	if !ok.HasAll(required) {
		return false
	}
	d.store.SetPosition(float32(p.Latitude), float32(p.Longitude))
	d.seen(availability.GPS, true)
	return true
}

func handleCOGSOGRapid(d *Dispatcher, data []byte) bool {
	if d.Simulation() {
		return true
	}
	const required = nmea2000.COGSOGCourse | nmea2000.COGSOGSpeed
	c, ok := nmea2000.ParseCOGSOGRapid(data, required)
	if !ok.HasAll(required) {
		return false
	}
	d.store.SetVelocity(float32(c.COG), float32(c.SOG))
	d.seen(availability.GPS, true)
	return true
}

func handleWindData(d *Dispatcher, data []byte) bool {
	w, ok := nmea2000.ParseWindData(data, nmea2000.WindSpeed|nmea2000.WindAngle)
	if ok == 0 {
		return false
	}
	if ok.Has(nmea2000.WindSpeed) {
		d.store.SetWindSpeed(float32(w.Speed))
	}
	if ok.Has(nmea2000.WindAngle) {
		d.store.SetWindDirection(float32(w.Angle))
	}
	d.seen(availability.Anemometer, true)
	return true
}

// Water temperature alone never marks the speed/depth unit active; only a
// depth reading does.
func handleEnvironmental(d *Dispatcher, data []byte) bool {
	e, ok := nmea2000.ParseEnvironmental(data, nmea2000.EnvironmentalWaterTemp)
	if !ok.Has(nmea2000.EnvironmentalWaterTemp) {
		return false
	}
	d.store.SetWaterTemperature(float32(e.WaterTemp))
	d.seen(availability.SpeedDepth, false)
	return true
}

func handleEnvironmentalHumidity(d *Dispatcher, data []byte) bool {
	const want = nmea2000.HumidityTemperature | nmea2000.HumidityHumidity | nmea2000.HumidityPressure
	e, ok := nmea2000.ParseEnvironmentalHumidity(data, want)
	if ok == 0 {
		return false
	}
	if ok.Has(nmea2000.HumidityTemperature) {
		d.store.SetAirTemperature(float32(e.Temperature))
	}
	if ok.Has(nmea2000.HumidityHumidity) {
		d.store.SetAirHumidity(float32(e.Humidity))
	}
	if ok.Has(nmea2000.HumidityPressure) {
		d.store.SetAirPressure(float32(e.AtmosphericPres))
	}
	d.seen(availability.Anemometer, true)
	return true
}
