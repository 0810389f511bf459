package nmea2000

import (
	"math"
	"testing"
	"time"
)

func TestDecodeID(t *testing.T) {
	tests := []struct {
		name string
		id   uint32
		want Header
	}{
		{
			name: "broadcast position",
			id:   0x09F80117,
			want: Header{Priority: 2, PGN: PGNPositionRapid, Source: 0x17, Destination: AddressGlobal},
		},
		{
			name: "broadcast wind",
			id:   0x09FD0205,
			want: Header{Priority: 2, PGN: PGNWindData, Source: 0x05, Destination: AddressGlobal},
		},
		{
			name: "addressed iso request",
			id:   0x18EA2301,
			want: Header{Priority: 6, PGN: 59904, Source: 0x01, Destination: 0x23},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeID(tt.id)
			if got != tt.want {
				t.Fatalf("DecodeID(%#x) = %+v, want %+v", tt.id, got, tt.want)
			}
			if id := EncodeID(got); id != tt.id {
				t.Errorf("EncodeID(%+v) = %#x, want %#x", got, id, tt.id)
			}
		})
	}
}

func TestFrameIsExtended(t *testing.T) {
	f := Frame(Header{Priority: 3, PGN: PGNSystemTime, Source: 1}, SystemTimePayload(0, 0, time.Unix(0, 0)))
	if !f.Extended || f.Len != 8 {
		t.Fatalf("Frame = %v, want 8-byte extended", f)
	}
	if got := DecodeID(f.ID).PGN; got != PGNSystemTime {
		t.Errorf("PGN = %v, want %v", got, PGNSystemTime)
	}
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestParseSystemTime(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 14, 30, 45, 0, time.UTC)
	data := SystemTimePayload(7, 2, ts)

	st, ok := ParseSystemTime(data, AllFields)
	if !ok.HasAll(SystemTimeCalendar | SystemTimeUsecSinceEpoch | SystemTimeSID | SystemTimeSource) {
		t.Fatalf("decoded mask = %09b", ok)
	}
	if st.Year != 2024 || st.Month != 3 || st.Day != 9 || st.Hour != 14 || st.Minute != 30 || st.Second != 45 {
		t.Errorf("calendar = %+v", st)
	}
	if st.UsecSinceEpoch != uint64(ts.UnixMicro()) {
		t.Errorf("UsecSinceEpoch = %d, want %d", st.UsecSinceEpoch, ts.UnixMicro())
	}
	if st.SID != 7 || st.Source != 2 {
		t.Errorf("SID/Source = %d/%d, want 7/2", st.SID, st.Source)
	}
}

func TestParseSystemTimeMissingTime(t *testing.T) {
	data := SystemTimePayload(0, 0, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	for i := 4; i < 8; i++ {
		data[i] = 0xFF
	}

	st, ok := ParseSystemTime(data, SystemTimeCalendar)
	if ok.HasAll(SystemTimeCalendar) {
		t.Fatalf("mask = %09b, want time fields missing", ok)
	}
	if !ok.HasAll(SystemTimeYear | SystemTimeMonth | SystemTimeDay) {
		t.Errorf("mask = %09b, want date fields", ok)
	}
	if st.Hour != 0 || st.Minute != 0 {
		t.Errorf("time fields written: %+v", st)
	}
}

func TestParseOnlyRequested(t *testing.T) {
	data := WindDataPayload(WindData{SID: 1, Speed: 5.5, Angle: 1.2, Reference: 2})
	w, ok := ParseWindData(data, WindAngle)
	if ok != WindAngle {
		t.Errorf("mask = %04b, want %04b", ok, WindAngle)
	}
	if w.Speed != 0 || !near(w.Angle, 1.2, 1e-4) {
		t.Errorf("wind = %+v, want only angle", w)
	}
}

func TestParsePositionRapid(t *testing.T) {
	t.Run("both", func(t *testing.T) {
		p, ok := ParsePositionRapid(PositionRapidPayload(PositionRapid{Latitude: 60.1699, Longitude: -24.9384}), AllFields)
		if ok != PositionLatitude|PositionLongitude {
			t.Fatalf("mask = %02b", ok)
		}
		if !near(p.Latitude, 60.1699, 1e-7) || !near(p.Longitude, -24.9384, 1e-7) {
			t.Errorf("position = %+v", p)
		}
	})

	t.Run("longitude not available", func(t *testing.T) {
		data := PositionRapidPayload(PositionRapid{Latitude: 10})
		data[4], data[5], data[6], data[7] = 0xFF, 0xFF, 0xFF, 0x7F
		p, ok := ParsePositionRapid(data, AllFields)
		if ok != PositionLatitude {
			t.Errorf("mask = %02b, want latitude only", ok)
		}
		if p.Longitude != 0 {
			t.Errorf("Longitude = %v, want 0", p.Longitude)
		}
	})

	t.Run("short", func(t *testing.T) {
		if _, ok := ParsePositionRapid([]byte{1, 2, 3}, AllFields); ok != 0 {
			t.Errorf("mask = %02b, want 0", ok)
		}
	})
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Run("rudder", func(t *testing.T) {
		r, ok := ParseRudder(RudderPayload(Rudder{Instance: 0, DirectionOrder: 1, AngleOrder: -0.3, Position: 0.25}), AllFields)
		if !ok.HasAll(RudderPosition|RudderAngleOrder|RudderDirectionOrder) || !near(r.Position, 0.25, 1e-4) || !near(r.AngleOrder, -0.3, 1e-4) {
			t.Errorf("rudder = %+v mask %04b", r, ok)
		}
	})

	t.Run("heading", func(t *testing.T) {
		h, ok := ParseVesselHeading(VesselHeadingPayload(VesselHeading{Heading: 3.1, Deviation: -0.01, Variation: 0.05, Reference: HeadingMagnetic}), AllFields)
		if ok != AllFields&(VesselHeadingSID|VesselHeadingHeading|VesselHeadingDeviation|VesselHeadingVariation|VesselHeadingReference) {
			t.Errorf("mask = %05b", ok)
		}
		if !near(h.Heading, 3.1, 1e-4) || h.Reference != HeadingMagnetic {
			t.Errorf("heading = %+v", h)
		}
	})

	t.Run("battery", func(t *testing.T) {
		bs, ok := ParseBatteryStatus(BatteryStatusPayload(BatteryStatus{Instance: 1, Voltage: 12.6, Current: -3.2, Temperature: 25, SID: 4}), AllFields)
		if !ok.HasAll(BatteryVoltage | BatteryCurrent | BatteryTemperature) {
			t.Fatalf("mask = %05b", ok)
		}
		if !near(bs.Voltage, 12.6, 0.01) || !near(bs.Current, -3.2, 0.1) || !near(bs.Temperature, 25, 0.01) {
			t.Errorf("battery = %+v", bs)
		}
	})

	t.Run("speed", func(t *testing.T) {
		s, ok := ParseSpeed(SpeedPayload(Speed{WaterSpeed: 3.21, GroundSpeed: 3.5}), SpeedWater)
		if ok != SpeedWater || !near(s.WaterSpeed, 3.21, 0.01) || s.GroundSpeed != 0 {
			t.Errorf("speed = %+v mask %04b", s, ok)
		}
	})

	t.Run("depth", func(t *testing.T) {
		d, ok := ParseWaterDepth(WaterDepthPayload(WaterDepth{Depth: 42.17, Offset: -0.5, Range: 100}), AllFields)
		if !ok.HasAll(WaterDepthDepth|WaterDepthOffset|WaterDepthRange) || !near(d.Depth, 42.17, 0.01) || !near(d.Offset, -0.5, 0.001) || d.Range != 100 {
			t.Errorf("depth = %+v mask %04b", d, ok)
		}
	})

	t.Run("cog sog", func(t *testing.T) {
		c, ok := ParseCOGSOGRapid(COGSOGRapidPayload(COGSOGRapid{COG: 1.5708, SOG: 2.57}), AllFields)
		if !ok.HasAll(COGSOGCourse|COGSOGSpeed) || !near(c.COG, 1.5708, 1e-4) || !near(c.SOG, 2.57, 0.01) {
			t.Errorf("cog/sog = %+v mask %04b", c, ok)
		}
	})

	t.Run("environmental", func(t *testing.T) {
		e, ok := ParseEnvironmental(EnvironmentalPayload(Environmental{WaterTemp: 14.5, AirTemp: 20, AtmosphericPres: 1013}), AllFields)
		if !ok.HasAll(EnvironmentalWaterTemp|EnvironmentalAirTemp|EnvironmentalPressure) || !near(e.WaterTemp, 14.5, 0.01) || e.AtmosphericPres != 1013 {
			t.Errorf("environmental = %+v mask %04b", e, ok)
		}
	})

	t.Run("humidity", func(t *testing.T) {
		in := EnvironmentalHumidity{TempSource: 1, HumiditySource: 0, Temperature: 18.25, Humidity: 65.2, AtmosphericPres: 1002}
		e, ok := ParseEnvironmentalHumidity(EnvironmentalHumidityPayload(in), AllFields)
		if !ok.HasAll(HumidityTemperature | HumidityHumidity | HumidityPressure | HumidityTempSource | HumidityHumiditySource) {
			t.Fatalf("mask = %06b", ok)
		}
		if !near(e.Temperature, 18.25, 0.01) || !near(e.Humidity, 65.2, 0.004) || e.AtmosphericPres != 1002 || e.TempSource != 1 {
			t.Errorf("humidity = %+v", e)
		}
	})
}

func TestNotAvailableSentinels(t *testing.T) {
	data := blank()
	if _, ok := ParseWindData(data, AllFields); ok != 0 {
		t.Errorf("wind mask = %04b, want 0", ok)
	}
	if _, ok := ParseWaterDepth(data, WaterDepthSID|WaterDepthDepth|WaterDepthRange); ok != 0 {
		t.Errorf("depth mask = %04b, want 0", ok)
	}

	rudder := RudderPayload(Rudder{Position: 0.1})
	rudder[4], rudder[5] = 0xFF, 0x7F
	if _, ok := ParseRudder(rudder, RudderPosition); ok != 0 {
		t.Errorf("rudder mask = %04b, want 0", ok)
	}
}

func TestPGNString(t *testing.T) {
	if got, want := PGNWaterDepth.String(), "128267 water-depth"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := PGN(60928).String(), "60928"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if PGN(60928).Known() {
		t.Error("Known(60928) = true")
	}
}
