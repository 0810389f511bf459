package nmea2000

// WindData is PGN 130306. Speed in m/s, angle in radians.
type WindData struct {
	SID       uint8
	Speed     float64
	Angle     float64
	Reference uint8
}

const (
	WindSID Fields = 1 << iota
	WindSpeed
	WindAngle
	WindReference
)

func ParseWindData(data []byte, want Fields) (WindData, Fields) {
	var (
		w  WindData
		ok Fields
	)
	if want.Has(WindSID) {
		if v, valid := u8(data, 0); valid {
			w.SID, ok = v, ok|WindSID
		}
	}
	if want.Has(WindSpeed) {
		if v, valid := u16(data, 1); valid {
			w.Speed, ok = float64(v)*speedScale, ok|WindSpeed
		}
	}
	if want.Has(WindAngle) {
		if v, valid := u16(data, 3); valid {
			w.Angle, ok = float64(v)*angleScale, ok|WindAngle
		}
	}
	if want.Has(WindReference) {
		if v, valid := lowBits(data, 5, 3); valid {
			w.Reference, ok = v, ok|WindReference
		}
	}
	return w, ok
}

func WindDataPayload(w WindData) []byte {
	b := blank()
	b[0] = w.SID
	putU16(b[1:], w.Speed, speedScale)
	putU16(b[3:], w.Angle, angleScale)
	b[5] = 0xF8 | w.Reference&0x07
	return b
}

const humidityScale = 0.004 // percent per unit

// EnvironmentalHumidity is PGN 130311. Temperature in °C, humidity in
// percent, pressure in hPa.
type EnvironmentalHumidity struct {
	SID             uint8
	TempSource      uint8
	HumiditySource  uint8
	Temperature     float64
	Humidity        float64
	AtmosphericPres float64
}

const (
	HumiditySID Fields = 1 << iota
	HumidityTempSource
	HumidityHumiditySource
	HumidityTemperature
	HumidityHumidity
	HumidityPressure
)

func ParseEnvironmentalHumidity(data []byte, want Fields) (EnvironmentalHumidity, Fields) {
	var (
		e  EnvironmentalHumidity
		ok Fields
	)
	if want.Has(HumiditySID) {
		if v, valid := u8(data, 0); valid {
			e.SID, ok = v, ok|HumiditySID
		}
	}
	if want.Has(HumidityTempSource) {
		if v, valid := lowBits(data, 1, 6); valid {
			e.TempSource, ok = v, ok|HumidityTempSource
		}
	}
	if want.Has(HumidityHumiditySource) {
		if v, valid := highBits(data, 1, 2); valid {
			e.HumiditySource, ok = v, ok|HumidityHumiditySource
		}
	}
	if want.Has(HumidityTemperature) {
		if v, valid := u16(data, 2); valid {
			e.Temperature, ok = float64(v)*temperatureScale-kelvinOffset, ok|HumidityTemperature
		}
	}
	if want.Has(HumidityHumidity) {
		if v, valid := i16(data, 4); valid {
			e.Humidity, ok = float64(v)*humidityScale, ok|HumidityHumidity
		}
	}
	if want.Has(HumidityPressure) {
		if v, valid := u16(data, 6); valid {
			e.AtmosphericPres, ok = float64(v)*pressureScale, ok|HumidityPressure
		}
	}
	return e, ok
}

func EnvironmentalHumidityPayload(e EnvironmentalHumidity) []byte {
	b := blank()
	b[0] = e.SID
	b[1] = e.HumiditySource<<6 | e.TempSource&0x3F
	putU16(b[2:], e.Temperature+kelvinOffset, temperatureScale)
	putI16(b[4:], e.Humidity, humidityScale)
	putU16(b[6:], e.AtmosphericPres, pressureScale)
	return b
}
