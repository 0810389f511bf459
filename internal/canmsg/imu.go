package canmsg

import (
	"encoding/binary"

	"canbridge/internal/can"
)

// Attitude is the vehicle orientation in radians. On the wire each angle is
// an int16 at 1/8192 rad, big-endian.
type Attitude struct {
	Direction float64
	Pitch     float64
	Roll      float64
}

const (
	AttitudeDirection Fields = 1 << iota
	AttitudePitch
	AttitudeRoll
)

func (Attitude) Kind() Kind         { return KindAttitude }
func (a Attitude) Frame() can.Frame { return EncodeAttitude(a) }

func EncodeAttitude(a Attitude) can.Frame {
	f := newFrame(KindAttitude)
	binary.BigEndian.PutUint16(f.Data[0:2], uint16(toInt16(a.Direction, AttitudeScale)))
	binary.BigEndian.PutUint16(f.Data[2:4], uint16(toInt16(a.Pitch, AttitudeScale)))
	binary.BigEndian.PutUint16(f.Data[4:6], uint16(toInt16(a.Roll, AttitudeScale)))
	return f
}

func DecodeAttitude(f can.Frame, want Fields) Attitude {
	var a Attitude
	if want.Has(AttitudeDirection) {
		a.Direction = float64(int16(binary.BigEndian.Uint16(f.Data[0:2]))) / AttitudeScale
	}
	if want.Has(AttitudePitch) {
		a.Pitch = float64(int16(binary.BigEndian.Uint16(f.Data[2:4]))) / AttitudeScale
	}
	if want.Has(AttitudeRoll) {
		a.Roll = float64(int16(binary.BigEndian.Uint16(f.Data[4:6]))) / AttitudeScale
	}
	return a
}

// YawRate is the z-axis rotation rate in rad/s.
type YawRate struct {
	Z float64
}

const YawRateZ Fields = 1 << 0

func (YawRate) Kind() Kind         { return KindYawRate }
func (y YawRate) Frame() can.Frame { return EncodeYawRate(y) }

func EncodeYawRate(y YawRate) can.Frame {
	f := newFrame(KindYawRate)
	binary.LittleEndian.PutUint32(f.Data[0:4], uint32(toInt32(y.Z, YawRateScale)))
	return f
}

func DecodeYawRate(f can.Frame, want Fields) YawRate {
	var y YawRate
	if want.Has(YawRateZ) {
		y.Z = float64(int32(binary.LittleEndian.Uint32(f.Data[0:4]))) / YawRateScale
	}
	return y
}

// Per-axis selectors shared by AngularVelocity and LinearAcceleration.
const (
	AxisX Fields = 1 << iota
	AxisY
	AxisZ
)

// AngularVelocity is in rad/s.
type AngularVelocity struct {
	X, Y, Z float64
}

func (AngularVelocity) Kind() Kind         { return KindAngularVelocity }
func (v AngularVelocity) Frame() can.Frame { return EncodeAngularVelocity(v) }

func EncodeAngularVelocity(v AngularVelocity) can.Frame {
	f := newFrame(KindAngularVelocity)
	putVec3(&f, v.X, v.Y, v.Z, AngularRateScale)
	return f
}

func DecodeAngularVelocity(f can.Frame, want Fields) AngularVelocity {
	var v AngularVelocity
	v.X, v.Y, v.Z = vec3(&f, want, AngularRateScale)
	return v
}

// LinearAcceleration is in m/s².
type LinearAcceleration struct {
	X, Y, Z float64
}

func (LinearAcceleration) Kind() Kind         { return KindLinearAcceleration }
func (a LinearAcceleration) Frame() can.Frame { return EncodeLinearAcceleration(a) }

func EncodeLinearAcceleration(a LinearAcceleration) can.Frame {
	f := newFrame(KindLinearAcceleration)
	putVec3(&f, a.X, a.Y, a.Z, AccelerationScale)
	return f
}

func DecodeLinearAcceleration(f can.Frame, want Fields) LinearAcceleration {
	var a LinearAcceleration
	a.X, a.Y, a.Z = vec3(&f, want, AccelerationScale)
	return a
}

func putVec3(f *can.Frame, x, y, z, scale float64) {
	binary.LittleEndian.PutUint16(f.Data[0:2], uint16(toInt16(x, scale)))
	binary.LittleEndian.PutUint16(f.Data[2:4], uint16(toInt16(y, scale)))
	binary.LittleEndian.PutUint16(f.Data[4:6], uint16(toInt16(z, scale)))
}

func vec3(f *can.Frame, want Fields, scale float64) (x, y, z float64) {
	if want.Has(AxisX) {
		x = float64(int16(binary.LittleEndian.Uint16(f.Data[0:2]))) / scale
	}
	if want.Has(AxisY) {
		y = float64(int16(binary.LittleEndian.Uint16(f.Data[2:4]))) / scale
	}
	if want.Has(AxisZ) {
		z = float64(int16(binary.LittleEndian.Uint16(f.Data[4:6]))) / scale
	}
	return x, y, z
}
