package nmea2000

// BatteryStatus is PGN 127508.
type BatteryStatus struct {
	Instance    uint8
	SID         uint8
	Voltage     float64 // V
	Current     float64 // A
	Temperature float64 // °C
}

const (
	BatteryInstance Fields = 1 << iota
	BatterySID
	BatteryVoltage
	BatteryCurrent
	BatteryTemperature
)

const (
	voltageScale     = 0.01
	currentScale     = 0.1
	temperatureScale = 0.01 // kelvin per unit
)

func ParseBatteryStatus(data []byte, want Fields) (BatteryStatus, Fields) {
	var (
		bs BatteryStatus
		ok Fields
	)
	if want.Has(BatteryInstance) {
		if v, valid := u8(data, 0); valid {
			bs.Instance, ok = v, ok|BatteryInstance
		}
	}
	if want.Has(BatteryVoltage) {
		if v, valid := i16(data, 1); valid {
			bs.Voltage, ok = float64(v)*voltageScale, ok|BatteryVoltage
		}
	}
	if want.Has(BatteryCurrent) {
		if v, valid := i16(data, 3); valid {
			bs.Current, ok = float64(v)*currentScale, ok|BatteryCurrent
		}
	}
	if want.Has(BatteryTemperature) {
		if v, valid := u16(data, 5); valid {
			bs.Temperature, ok = float64(v)*temperatureScale-kelvinOffset, ok|BatteryTemperature
		}
	}
	if want.Has(BatterySID) {
		if v, valid := u8(data, 7); valid {
			bs.SID, ok = v, ok|BatterySID
		}
	}
	return bs, ok
}

func BatteryStatusPayload(bs BatteryStatus) []byte {
	b := blank()
	b[0] = bs.Instance
	putI16(b[1:], bs.Voltage, voltageScale)
	putI16(b[3:], bs.Current, currentScale)
	putU16(b[5:], bs.Temperature+kelvinOffset, temperatureScale)
	b[7] = bs.SID
	return b
}
