package canmsg

import "math"

// Fixed-point resolutions.
const (
	AttitudeScale     = 8192.0
	YawRateScale      = 1e8
	AngularRateScale  = 1e4
	AccelerationScale = 1e3
	DegreesScale      = 1e7
	HeadingScale      = 1e4
	SpeedScale        = 1e2
)

// toInt16 scales v and truncates toward zero, saturating at the int16 range.
// NaN encodes as zero.
func toInt16(v, scale float64) int16 {
	s := v * scale
	switch {
	case math.IsNaN(s):
		return 0
	case s >= math.MaxInt16:
		return math.MaxInt16
	case s <= math.MinInt16:
		return math.MinInt16
	}
	return int16(s)
}

func toInt32(v, scale float64) int32 {
	s := v * scale
	switch {
	case math.IsNaN(s):
		return 0
	case s >= math.MaxInt32:
		return math.MaxInt32
	case s <= math.MinInt32:
		return math.MinInt32
	}
	return int32(s)
}

func boolBit(b bool, bit byte) byte {
	if b {
		return bit
	}
	return 0
}
