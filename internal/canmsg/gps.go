package canmsg

import (
	"encoding/binary"

	"canbridge/internal/can"
)

const (
	Latitude Fields = 1 << iota
	Longitude
)

// GPSPosition is the receiver fix in decimal degrees.
type GPSPosition struct {
	Latitude  float64
	Longitude float64
}

func (GPSPosition) Kind() Kind         { return KindGPSPosition }
func (p GPSPosition) Frame() can.Frame { return EncodeGPSPosition(p) }

func EncodeGPSPosition(p GPSPosition) can.Frame {
	f := newFrame(KindGPSPosition)
	putLatLon(&f, p.Latitude, p.Longitude)
	return f
}

func DecodeGPSPosition(f can.Frame, want Fields) GPSPosition {
	var p GPSPosition
	p.Latitude, p.Longitude = latLon(&f, want)
	return p
}

// EstimatedGPSPosition has the GPSPosition layout under its own identifier.
type EstimatedGPSPosition struct {
	Latitude  float64
	Longitude float64
}

func (EstimatedGPSPosition) Kind() Kind         { return KindEstimatedGPSPosition }
func (p EstimatedGPSPosition) Frame() can.Frame { return EncodeEstimatedGPSPosition(p) }

func EncodeEstimatedGPSPosition(p EstimatedGPSPosition) can.Frame {
	f := newFrame(KindEstimatedGPSPosition)
	putLatLon(&f, p.Latitude, p.Longitude)
	return f
}

func DecodeEstimatedGPSPosition(f can.Frame, want Fields) EstimatedGPSPosition {
	var p EstimatedGPSPosition
	p.Latitude, p.Longitude = latLon(&f, want)
	return p
}

func putLatLon(f *can.Frame, lat, lon float64) {
	binary.LittleEndian.PutUint32(f.Data[0:4], uint32(toInt32(lat, DegreesScale)))
	binary.LittleEndian.PutUint32(f.Data[4:8], uint32(toInt32(lon, DegreesScale)))
}

func latLon(f *can.Frame, want Fields) (lat, lon float64) {
	if want.Has(Latitude) {
		lat = float64(int32(binary.LittleEndian.Uint32(f.Data[0:4]))) / DegreesScale
	}
	if want.Has(Longitude) {
		lon = float64(int32(binary.LittleEndian.Uint32(f.Data[4:8]))) / DegreesScale
	}
	return lat, lon
}

// GPSVelocity carries course in radians, ground speed in m/s and the
// receiver status word.
type GPSVelocity struct {
	Heading         float64
	Speed           float64
	MagneticBearing float64
	Status          uint16
}

const (
	VelocityHeading Fields = 1 << iota
	VelocitySpeed
	VelocityMagneticBearing
	VelocityStatus
)

func (GPSVelocity) Kind() Kind         { return KindGPSVelocity }
func (v GPSVelocity) Frame() can.Frame { return EncodeGPSVelocity(v) }

func EncodeGPSVelocity(v GPSVelocity) can.Frame {
	f := newFrame(KindGPSVelocity)
	binary.LittleEndian.PutUint16(f.Data[0:2], uint16(toInt16(v.Heading, HeadingScale)))
	binary.LittleEndian.PutUint16(f.Data[2:4], uint16(toInt16(v.Speed, SpeedScale)))
	binary.LittleEndian.PutUint16(f.Data[4:6], uint16(toInt16(v.MagneticBearing, HeadingScale)))
	binary.LittleEndian.PutUint16(f.Data[6:8], v.Status)
	return f
}

func DecodeGPSVelocity(f can.Frame, want Fields) GPSVelocity {
	var v GPSVelocity
	if want.Has(VelocityHeading) {
		v.Heading = float64(int16(binary.LittleEndian.Uint16(f.Data[0:2]))) / HeadingScale
	}
	if want.Has(VelocitySpeed) {
		v.Speed = float64(int16(binary.LittleEndian.Uint16(f.Data[2:4]))) / SpeedScale
	}
	if want.Has(VelocityMagneticBearing) {
		v.MagneticBearing = float64(int16(binary.LittleEndian.Uint16(f.Data[4:6]))) / HeadingScale
	}
	if want.Has(VelocityStatus) {
		v.Status = binary.LittleEndian.Uint16(f.Data[6:8])
	}
	return v
}
