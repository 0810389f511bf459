// Package canmsg packs and unpacks the fixed-layout frames this node sends to
// the rest of the vehicle: node status, rudder commands and details, inertial
// data and GPS state.
//
// Every kind has an EncodeX/DecodeX pair. Encoders are total: engineering
// values outside the wire range saturate. Decoders take a Fields mask and only
// compute the requested outputs; the rest are left at their zero value.
//
// Byte order is per message, not global. Attitude is big-endian, everything
// else is little-endian.
package canmsg

import (
	"canbridge/internal/can"
)

// Fields selects which outputs a decoder computes. Bit meanings are defined
// per message kind.
type Fields uint16

const AllFields Fields = 0xFFFF

func (f Fields) Has(bit Fields) bool { return f&bit != 0 }

// Kind enumerates the outbound message set.
type Kind uint8

const (
	KindStatus Kind = iota
	KindRudderSetState
	KindRudderSetTxRate
	KindRudderDetails
	KindAttitude
	KindYawRate
	KindAngularVelocity
	KindLinearAcceleration
	KindGPSPosition
	KindEstimatedGPSPosition
	KindGPSVelocity

	numKinds
)

// Standard (11-bit) identifiers.
const (
	IDStatus               uint32 = 0x080
	IDRudderSetState       uint32 = 0x081
	IDRudderSetTxRate      uint32 = 0x082
	IDRudderDetails        uint32 = 0x083
	IDAttitude             uint32 = 0x084
	IDYawRate              uint32 = 0x085
	IDAngularVelocity      uint32 = 0x086
	IDLinearAcceleration   uint32 = 0x087
	IDGPSPosition          uint32 = 0x088
	IDEstimatedGPSPosition uint32 = 0x089
	IDGPSVelocity          uint32 = 0x08A
)

// Payload sizes in bytes.
const (
	SizeStatus               = 8
	SizeRudderSetState       = 1
	SizeRudderSetTxRate      = 2
	SizeRudderDetails        = 7
	SizeAttitude             = 6
	SizeYawRate              = 4
	SizeAngularVelocity      = 6
	SizeLinearAcceleration   = 6
	SizeGPSPosition          = 8
	SizeEstimatedGPSPosition = 8
	SizeGPSVelocity          = 8
)

type kindInfo struct {
	name string
	id   uint32
	size uint8
}

var kinds = [numKinds]kindInfo{
	KindStatus:               {"status", IDStatus, SizeStatus},
	KindRudderSetState:       {"rudder-set-state", IDRudderSetState, SizeRudderSetState},
	KindRudderSetTxRate:      {"rudder-set-tx-rate", IDRudderSetTxRate, SizeRudderSetTxRate},
	KindRudderDetails:        {"rudder-details", IDRudderDetails, SizeRudderDetails},
	KindAttitude:             {"attitude", IDAttitude, SizeAttitude},
	KindYawRate:              {"yaw-rate", IDYawRate, SizeYawRate},
	KindAngularVelocity:      {"angular-velocity", IDAngularVelocity, SizeAngularVelocity},
	KindLinearAcceleration:   {"linear-acceleration", IDLinearAcceleration, SizeLinearAcceleration},
	KindGPSPosition:          {"gps-position", IDGPSPosition, SizeGPSPosition},
	KindEstimatedGPSPosition: {"estimated-gps-position", IDEstimatedGPSPosition, SizeEstimatedGPSPosition},
	KindGPSVelocity:          {"gps-velocity", IDGPSVelocity, SizeGPSVelocity},
}

var kindByID = func() map[uint32]Kind {
	m := make(map[uint32]Kind, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		m[kinds[k].id] = k
	}
	return m
}()

func (k Kind) String() string {
	if k >= numKinds {
		return "unknown"
	}
	return kinds[k].name
}

func (k Kind) ID() uint32 {
	if k >= numKinds {
		return 0
	}
	return kinds[k].id
}

func (k Kind) Size() uint8 {
	if k >= numKinds {
		return 0
	}
	return kinds[k].size
}

// KindByName resolves the names returned by Kind.String.
func KindByName(name string) (Kind, bool) {
	for k := Kind(0); k < numKinds; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return 0, false
}

// Message is one of the outbound message kinds.
type Message interface {
	Kind() Kind
	Frame() can.Frame
}

// Decode classifies a frame by identifier and decodes every field. It
// returns false for extended frames, unknown identifiers and payloads shorter
// than the kind's size.
func Decode(f can.Frame) (Message, bool) {
	if f.Extended {
		return nil, false
	}
	k, ok := kindByID[f.ID]
	if !ok || f.Len < k.Size() {
		return nil, false
	}

	switch k {
	case KindStatus:
		return DecodeStatus(f, AllFields), true
	case KindRudderSetState:
		return DecodeRudderSetState(f, AllFields), true
	case KindRudderSetTxRate:
		return DecodeRudderSetTxRate(f, AllFields), true
	case KindRudderDetails:
		return DecodeRudderDetails(f, AllFields), true
	case KindAttitude:
		return DecodeAttitude(f, AllFields), true
	case KindYawRate:
		return DecodeYawRate(f, AllFields), true
	case KindAngularVelocity:
		return DecodeAngularVelocity(f, AllFields), true
	case KindLinearAcceleration:
		return DecodeLinearAcceleration(f, AllFields), true
	case KindGPSPosition:
		return DecodeGPSPosition(f, AllFields), true
	case KindEstimatedGPSPosition:
		return DecodeEstimatedGPSPosition(f, AllFields), true
	case KindGPSVelocity:
		return DecodeGPSVelocity(f, AllFields), true
	}
	return nil, false
}

func newFrame(k Kind) can.Frame {
	return can.Frame{ID: k.ID(), Len: k.Size()}
}
