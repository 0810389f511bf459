package nmea2000

const angleScale = 1e-4 // radians per unit

// Rudder is PGN 127245. Angles are in radians.
type Rudder struct {
	Instance       uint8
	DirectionOrder uint8
	AngleOrder     float64
	Position       float64
}

const (
	RudderInstance Fields = 1 << iota
	RudderDirectionOrder
	RudderAngleOrder
	RudderPosition
)

func ParseRudder(data []byte, want Fields) (Rudder, Fields) {
	var (
		r  Rudder
		ok Fields
	)
	if want.Has(RudderInstance) {
		if v, valid := u8(data, 0); valid {
			r.Instance, ok = v, ok|RudderInstance
		}
	}
	if want.Has(RudderDirectionOrder) {
		if v, valid := lowBits(data, 1, 2); valid {
			r.DirectionOrder, ok = v, ok|RudderDirectionOrder
		}
	}
	if want.Has(RudderAngleOrder) {
		if v, valid := i16(data, 2); valid {
			r.AngleOrder, ok = float64(v)*angleScale, ok|RudderAngleOrder
		}
	}
	if want.Has(RudderPosition) {
		if v, valid := i16(data, 4); valid {
			r.Position, ok = float64(v)*angleScale, ok|RudderPosition
		}
	}
	return r, ok
}

func RudderPayload(r Rudder) []byte {
	b := blank()
	b[0] = r.Instance
	b[1] = 0xFC | r.DirectionOrder&0x03
	putI16(b[2:], r.AngleOrder, angleScale)
	putI16(b[4:], r.Position, angleScale)
	return b
}

// Heading references.
const (
	HeadingTrue     uint8 = 0
	HeadingMagnetic uint8 = 1
)

// VesselHeading is PGN 127250. Angles are in radians.
type VesselHeading struct {
	SID       uint8
	Heading   float64
	Deviation float64
	Variation float64
	Reference uint8
}

const (
	VesselHeadingSID Fields = 1 << iota
	VesselHeadingHeading
	VesselHeadingDeviation
	VesselHeadingVariation
	VesselHeadingReference
)

func ParseVesselHeading(data []byte, want Fields) (VesselHeading, Fields) {
	var (
		h  VesselHeading
		ok Fields
	)
	if want.Has(VesselHeadingSID) {
		if v, valid := u8(data, 0); valid {
			h.SID, ok = v, ok|VesselHeadingSID
		}
	}
	if want.Has(VesselHeadingHeading) {
		if v, valid := u16(data, 1); valid {
			h.Heading, ok = float64(v)*angleScale, ok|VesselHeadingHeading
		}
	}
	if want.Has(VesselHeadingDeviation) {
		if v, valid := i16(data, 3); valid {
			h.Deviation, ok = float64(v)*angleScale, ok|VesselHeadingDeviation
		}
	}
	if want.Has(VesselHeadingVariation) {
		if v, valid := i16(data, 5); valid {
			h.Variation, ok = float64(v)*angleScale, ok|VesselHeadingVariation
		}
	}
	if want.Has(VesselHeadingReference) {
		if v, valid := lowBits(data, 7, 2); valid {
			h.Reference, ok = v, ok|VesselHeadingReference
		}
	}
	return h, ok
}

func VesselHeadingPayload(h VesselHeading) []byte {
	b := blank()
	b[0] = h.SID
	putU16(b[1:], h.Heading, angleScale)
	putI16(b[3:], h.Deviation, angleScale)
	putI16(b[5:], h.Variation, angleScale)
	b[7] = 0xFC | h.Reference&0x03
	return b
}
