package nmea2000

const (
	speedScale    = 0.01  // m/s per unit
	depthScale    = 0.01  // m per unit
	offsetScale   = 0.001 // m per unit
	rangeScale    = 10.0  // m per unit
	pressureScale = 1.0   // hPa per unit
)

// Speed is PGN 128259. Speeds are in m/s.
type Speed struct {
	SID         uint8
	WaterSpeed  float64
	GroundSpeed float64
	Type        uint8
}

const (
	SpeedSID Fields = 1 << iota
	SpeedWater
	SpeedGround
	SpeedType
)

func ParseSpeed(data []byte, want Fields) (Speed, Fields) {
	var (
		s  Speed
		ok Fields
	)
	if want.Has(SpeedSID) {
		if v, valid := u8(data, 0); valid {
			s.SID, ok = v, ok|SpeedSID
		}
	}
	if want.Has(SpeedWater) {
		if v, valid := u16(data, 1); valid {
			s.WaterSpeed, ok = float64(v)*speedScale, ok|SpeedWater
		}
	}
	if want.Has(SpeedGround) {
		if v, valid := u16(data, 3); valid {
			s.GroundSpeed, ok = float64(v)*speedScale, ok|SpeedGround
		}
	}
	if want.Has(SpeedType) {
		if v, valid := u8(data, 5); valid {
			s.Type, ok = v, ok|SpeedType
		}
	}
	return s, ok
}

func SpeedPayload(s Speed) []byte {
	b := blank()
	b[0] = s.SID
	putU16(b[1:], s.WaterSpeed, speedScale)
	putU16(b[3:], s.GroundSpeed, speedScale)
	b[5] = s.Type
	return b
}

// WaterDepth is PGN 128267. Depth is below the transducer, in metres.
type WaterDepth struct {
	SID    uint8
	Depth  float64
	Offset float64
	Range  float64
}

const (
	WaterDepthSID Fields = 1 << iota
	WaterDepthDepth
	WaterDepthOffset
	WaterDepthRange
)

func ParseWaterDepth(data []byte, want Fields) (WaterDepth, Fields) {
	var (
		d  WaterDepth
		ok Fields
	)
	if want.Has(WaterDepthSID) {
		if v, valid := u8(data, 0); valid {
			d.SID, ok = v, ok|WaterDepthSID
		}
	}
	if want.Has(WaterDepthDepth) {
		if v, valid := u32(data, 1); valid {
			d.Depth, ok = float64(v)*depthScale, ok|WaterDepthDepth
		}
	}
	if want.Has(WaterDepthOffset) {
		if v, valid := i16(data, 5); valid {
			d.Offset, ok = float64(v)*offsetScale, ok|WaterDepthOffset
		}
	}
	if want.Has(WaterDepthRange) {
		if v, valid := u8(data, 7); valid {
			d.Range, ok = float64(v)*rangeScale, ok|WaterDepthRange
		}
	}
	return d, ok
}

func WaterDepthPayload(d WaterDepth) []byte {
	b := blank()
	b[0] = d.SID
	putU32(b[1:], d.Depth, depthScale)
	putI16(b[5:], d.Offset, offsetScale)
	b[7] = uint8(clamp(d.Range/rangeScale, 0, naU8-1))
	return b
}

// Environmental is PGN 130310. Temperatures are in °C, pressure in hPa.
type Environmental struct {
	SID             uint8
	WaterTemp       float64
	AirTemp         float64
	AtmosphericPres float64
}

const (
	EnvironmentalSID Fields = 1 << iota
	EnvironmentalWaterTemp
	EnvironmentalAirTemp
	EnvironmentalPressure
)

func ParseEnvironmental(data []byte, want Fields) (Environmental, Fields) {
	var (
		e  Environmental
		ok Fields
	)
	if want.Has(EnvironmentalSID) {
		if v, valid := u8(data, 0); valid {
			e.SID, ok = v, ok|EnvironmentalSID
		}
	}
	if want.Has(EnvironmentalWaterTemp) {
		if v, valid := u16(data, 1); valid {
			e.WaterTemp, ok = float64(v)*temperatureScale-kelvinOffset, ok|EnvironmentalWaterTemp
		}
	}
	if want.Has(EnvironmentalAirTemp) {
		if v, valid := u16(data, 3); valid {
			e.AirTemp, ok = float64(v)*temperatureScale-kelvinOffset, ok|EnvironmentalAirTemp
		}
	}
	if want.Has(EnvironmentalPressure) {
		if v, valid := u16(data, 5); valid {
			e.AtmosphericPres, ok = float64(v)*pressureScale, ok|EnvironmentalPressure
		}
	}
	return e, ok
}

func EnvironmentalPayload(e Environmental) []byte {
	b := blank()
	b[0] = e.SID
	putU16(b[1:], e.WaterTemp+kelvinOffset, temperatureScale)
	putU16(b[3:], e.AirTemp+kelvinOffset, temperatureScale)
	putU16(b[5:], e.AtmosphericPres, pressureScale)
	return b
}
