package nmea2000

import (
	"encoding/binary"
	"math"
)

// Fields is a per-PGN bitmask of requested or decoded outputs.
type Fields uint16

const AllFields Fields = 0xFFFF

func (f Fields) Has(bit Fields) bool { return f&bit != 0 }

// HasAll reports whether every bit of mask is set.
func (f Fields) HasAll(mask Fields) bool { return f&mask == mask }

const (
	kelvinOffset = 273.15

	naU8  = 0xFF
	naU16 = 0xFFFF
	naI16 = 0x7FFF
	naU32 = 0xFFFFFFFF
	naI32 = 0x7FFFFFFF
)

func u8(data []byte, off int) (uint8, bool) {
	if len(data) < off+1 || data[off] == naU8 {
		return 0, false
	}
	return data[off], true
}

// lowBits reads an n-bit field from the low end of a byte. All ones means
// not available.
func lowBits(data []byte, off int, n uint) (uint8, bool) {
	if len(data) < off+1 {
		return 0, false
	}
	mask := uint8(1<<n - 1)
	v := data[off] & mask
	if v == mask {
		return 0, false
	}
	return v, true
}

func highBits(data []byte, off int, n uint) (uint8, bool) {
	if len(data) < off+1 {
		return 0, false
	}
	mask := uint8(1<<n - 1)
	v := data[off] >> (8 - n) & mask
	if v == mask {
		return 0, false
	}
	return v, true
}

func u16(data []byte, off int) (uint16, bool) {
	if len(data) < off+2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(data[off:])
	return v, v != naU16
}

func i16(data []byte, off int) (int16, bool) {
	if len(data) < off+2 {
		return 0, false
	}
	v := int16(binary.LittleEndian.Uint16(data[off:]))
	return v, v != naI16
}

func u32(data []byte, off int) (uint32, bool) {
	if len(data) < off+4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(data[off:])
	return v, v != naU32
}

func i32(data []byte, off int) (int32, bool) {
	if len(data) < off+4 {
		return 0, false
	}
	v := int32(binary.LittleEndian.Uint32(data[off:]))
	return v, v != naI32
}

// Encoding helpers used by the PGN builders. Values round to the nearest
// unit and clamp below the not-available sentinel.

func putU16(b []byte, v, scale float64) {
	binary.LittleEndian.PutUint16(b, uint16(clamp(math.Round(v/scale), 0, naU16-1)))
}

func putI16(b []byte, v, scale float64) {
	binary.LittleEndian.PutUint16(b, uint16(int16(clamp(math.Round(v/scale), math.MinInt16, naI16-1))))
}

func putU32(b []byte, v, scale float64) {
	binary.LittleEndian.PutUint32(b, uint32(clamp(math.Round(v/scale), 0, naU32-1)))
}

func putI32(b []byte, v, scale float64) {
	binary.LittleEndian.PutUint32(b, uint32(int32(clamp(math.Round(v/scale), math.MinInt32, naI32-1))))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

// blank returns an 8-byte payload with every byte set to not available.
func blank() []byte {
	return []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
}
