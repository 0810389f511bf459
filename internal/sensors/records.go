package sensors

import (
	"encoding/binary"
	"math"
)

// Wind is apparent wind from the anemometer: m/s and radians.
type Wind struct {
	Speed     float32 `json:"speed"`
	Direction float32 `json:"direction"`
}

// Air is ambient air from the anemometer: °C, hPa and percent.
type Air struct {
	Temperature float32 `json:"temperature"`
	Pressure    float32 `json:"pressure"`
	Humidity    float32 `json:"humidity"`
}

// Water is from the speed/depth unit: m/s, °C and metres.
type Water struct {
	Speed       float32 `json:"speed"`
	Temperature float32 `json:"temperature"`
	Depth       float32 `json:"depth"`
}

// Throttle is the propulsion controller's shaft speed.
type Throttle struct {
	RPM int16 `json:"rpm"`
}

// Navigation is the receiver fix and ground track. Position in degrees,
// altitude in metres, course in radians, speed in m/s.
type Navigation struct {
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
	Altitude  float32 `json:"altitude"`
	COG       float32 `json:"cog"`
	SOG       float32 `json:"sog"`
}

// Rudder is the reported rudder angle in radians.
type Rudder struct {
	Position float32 `json:"position"`
}

// DateTime is the UTC wall clock reported by the navigation receiver.
type DateTime struct {
	Year           uint16 `json:"year"`
	Month          uint8  `json:"month"`
	Day            uint8  `json:"day"`
	Hour           uint8  `json:"hour"`
	Minute         uint8  `json:"minute"`
	Second         uint8  `json:"second"`
	UsecSinceEpoch uint64 `json:"usec_since_epoch"`
}

// Power is the battery monitor reading: V, A and °C.
type Power struct {
	Voltage     float32 `json:"voltage"`
	Current     float32 `json:"current"`
	Temperature float32 `json:"temperature"`
}

// Heading is the heading reference output in radians.
type Heading struct {
	Heading   float32 `json:"heading"`
	Deviation float32 `json:"deviation"`
	Variation float32 `json:"variation"`
}

// Packed snapshot sizes. The last byte of each is the fresh flag.
const (
	WindPackedSize       = 9
	AirPackedSize        = 13
	WaterPackedSize      = 13
	ThrottlePackedSize   = 3
	NavigationPackedSize = 21
	RudderPackedSize     = 5
	DateTimePackedSize   = 16
	PowerPackedSize      = 13
	HeadingPackedSize    = 13
)

func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func flag(fresh bool) byte {
	if fresh {
		return 1
	}
	return 0
}

func (w Wind) pack(fresh bool) (b [WindPackedSize]byte) {
	putF32(b[0:], w.Speed)
	putF32(b[4:], w.Direction)
	b[8] = flag(fresh)
	return b
}

func (a Air) pack(fresh bool) (b [AirPackedSize]byte) {
	putF32(b[0:], a.Temperature)
	putF32(b[4:], a.Pressure)
	putF32(b[8:], a.Humidity)
	b[12] = flag(fresh)
	return b
}

func (w Water) pack(fresh bool) (b [WaterPackedSize]byte) {
	putF32(b[0:], w.Speed)
	putF32(b[4:], w.Temperature)
	putF32(b[8:], w.Depth)
	b[12] = flag(fresh)
	return b
}

func (t Throttle) pack(fresh bool) (b [ThrottlePackedSize]byte) {
	binary.LittleEndian.PutUint16(b[0:], uint16(t.RPM))
	b[2] = flag(fresh)
	return b
}

func (n Navigation) pack(fresh bool) (b [NavigationPackedSize]byte) {
	putF32(b[0:], n.Latitude)
	putF32(b[4:], n.Longitude)
	putF32(b[8:], n.Altitude)
	putF32(b[12:], n.COG)
	putF32(b[16:], n.SOG)
	b[20] = flag(fresh)
	return b
}

func (r Rudder) pack(fresh bool) (b [RudderPackedSize]byte) {
	putF32(b[0:], r.Position)
	b[4] = flag(fresh)
	return b
}

func (d DateTime) pack(fresh bool) (b [DateTimePackedSize]byte) {
	binary.LittleEndian.PutUint16(b[0:], d.Year)
	b[2] = d.Month
	b[3] = d.Day
	b[4] = d.Hour
	b[5] = d.Minute
	b[6] = d.Second
	binary.LittleEndian.PutUint64(b[7:], d.UsecSinceEpoch)
	b[15] = flag(fresh)
	return b
}

func (p Power) pack(fresh bool) (b [PowerPackedSize]byte) {
	putF32(b[0:], p.Voltage)
	putF32(b[4:], p.Current)
	putF32(b[8:], p.Temperature)
	b[12] = flag(fresh)
	return b
}

func (h Heading) pack(fresh bool) (b [HeadingPackedSize]byte) {
	putF32(b[0:], h.Heading)
	putF32(b[4:], h.Deviation)
	putF32(b[8:], h.Variation)
	b[12] = flag(fresh)
	return b
}
