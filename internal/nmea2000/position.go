package nmea2000

const positionScale = 1e-7 // degrees per unit

// PositionRapid is PGN 129025.
type PositionRapid struct {
	Latitude  float64
	Longitude float64
}

const (
	PositionLatitude Fields = 1 << iota
	PositionLongitude
)

func ParsePositionRapid(data []byte, want Fields) (PositionRapid, Fields) {
	var (
		p  PositionRapid
		ok Fields
	)
	if want.Has(PositionLatitude) {
		if v, valid := i32(data, 0); valid {
			p.Latitude, ok = float64(v)*positionScale, ok|PositionLatitude
		}
	}
	if want.Has(PositionLongitude) {
		if v, valid := i32(data, 4); valid {
			p.Longitude, ok = float64(v)*positionScale, ok|PositionLongitude
		}
	}
	return p, ok
}

func PositionRapidPayload(p PositionRapid) []byte {
	b := blank()
	putI32(b[0:], p.Latitude, positionScale)
	putI32(b[4:], p.Longitude, positionScale)
	return b
}

// COGSOGRapid is PGN 129026. Course is in radians, speed in m/s.
type COGSOGRapid struct {
	SID       uint8
	Reference uint8
	COG       float64
	SOG       float64
}

const (
	COGSOGSID Fields = 1 << iota
	COGSOGReference
	COGSOGCourse
	COGSOGSpeed
)

func ParseCOGSOGRapid(data []byte, want Fields) (COGSOGRapid, Fields) {
	var (
		c  COGSOGRapid
		ok Fields
	)
	if want.Has(COGSOGSID) {
		if v, valid := u8(data, 0); valid {
			c.SID, ok = v, ok|COGSOGSID
		}
	}
	if want.Has(COGSOGReference) {
		if v, valid := lowBits(data, 1, 2); valid {
			c.Reference, ok = v, ok|COGSOGReference
		}
	}
	if want.Has(COGSOGCourse) {
		if v, valid := u16(data, 2); valid {
			c.COG, ok = float64(v)*angleScale, ok|COGSOGCourse
		}
	}
	if want.Has(COGSOGSpeed) {
		if v, valid := u16(data, 4); valid {
			c.SOG, ok = float64(v)*speedScale, ok|COGSOGSpeed
		}
	}
	return c, ok
}

func COGSOGRapidPayload(c COGSOGRapid) []byte {
	b := blank()
	b[0] = c.SID
	b[1] = 0xFC | c.Reference&0x03
	putU16(b[2:], c.COG, angleScale)
	putU16(b[4:], c.SOG, speedScale)
	return b
}
