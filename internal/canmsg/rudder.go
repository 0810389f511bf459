package canmsg

import (
	"encoding/binary"

	"canbridge/internal/can"
)

// RudderSetState command bits.
const (
	RudderCalibrateCmdBit byte = 1 << 0
	RudderResetCmdBit     byte = 1 << 1
	RudderEnableCmdBit    byte = 1 << 2
)

// RudderDetails flag bits, byte 6.
const (
	RudderEnabledBit        byte = 1 << 0
	RudderCalibratedBit     byte = 1 << 1
	RudderCalibratingBit    byte = 1 << 2
	RudderStarboardLimitBit byte = 1 << 5
	RudderPortLimitBit      byte = 1 << 7
)

type RudderSetState struct {
	Enable    bool
	Reset     bool
	Calibrate bool
}

const (
	RudderSetStateEnable Fields = 1 << iota
	RudderSetStateReset
	RudderSetStateCalibrate
)

func (RudderSetState) Kind() Kind         { return KindRudderSetState }
func (r RudderSetState) Frame() can.Frame { return EncodeRudderSetState(r) }

func EncodeRudderSetState(r RudderSetState) can.Frame {
	f := newFrame(KindRudderSetState)
	f.Data[0] = boolBit(r.Calibrate, RudderCalibrateCmdBit) |
		boolBit(r.Reset, RudderResetCmdBit) |
		boolBit(r.Enable, RudderEnableCmdBit)
	return f
}

func DecodeRudderSetState(f can.Frame, want Fields) RudderSetState {
	var r RudderSetState
	b := f.Data[0]
	if want.Has(RudderSetStateEnable) {
		r.Enable = b&RudderEnableCmdBit != 0
	}
	if want.Has(RudderSetStateReset) {
		r.Reset = b&RudderResetCmdBit != 0
	}
	if want.Has(RudderSetStateCalibrate) {
		r.Calibrate = b&RudderCalibrateCmdBit != 0
	}
	return r
}

// RudderSetTxRate asks the rudder node to change its transmit rates, in Hz.
type RudderSetTxRate struct {
	AngleRate  uint8
	StatusRate uint8
}

const (
	RudderTxAngleRate Fields = 1 << iota
	RudderTxStatusRate
)

func (RudderSetTxRate) Kind() Kind         { return KindRudderSetTxRate }
func (r RudderSetTxRate) Frame() can.Frame { return EncodeRudderSetTxRate(r) }

func EncodeRudderSetTxRate(r RudderSetTxRate) can.Frame {
	f := newFrame(KindRudderSetTxRate)
	f.Data[0] = r.AngleRate
	f.Data[1] = r.StatusRate
	return f
}

func DecodeRudderSetTxRate(f can.Frame, want Fields) RudderSetTxRate {
	var r RudderSetTxRate
	if want.Has(RudderTxAngleRate) {
		r.AngleRate = f.Data[0]
	}
	if want.Has(RudderTxStatusRate) {
		r.StatusRate = f.Data[1]
	}
	return r
}

// RudderDetails reports the rudder node's raw potentiometer reading, its
// calibrated limits and its state flags.
type RudderDetails struct {
	Potentiometer           uint16
	PortLimit               uint16
	StarboardLimit          uint16
	PortLimitTriggered      bool
	StarboardLimitTriggered bool
	Enabled                 bool
	Calibrated              bool
	Calibrating             bool
}

const (
	RudderPotentiometer Fields = 1 << iota
	RudderPortLimit
	RudderStarboardLimit
	RudderPortLimitTriggered
	RudderStarboardLimitTriggered
	RudderEnabled
	RudderCalibrated
	RudderCalibrating
)

func (RudderDetails) Kind() Kind         { return KindRudderDetails }
func (r RudderDetails) Frame() can.Frame { return EncodeRudderDetails(r) }

func EncodeRudderDetails(r RudderDetails) can.Frame {
	f := newFrame(KindRudderDetails)
	binary.LittleEndian.PutUint16(f.Data[0:2], r.Potentiometer)
	binary.LittleEndian.PutUint16(f.Data[2:4], r.PortLimit)
	binary.LittleEndian.PutUint16(f.Data[4:6], r.StarboardLimit)
	f.Data[6] = boolBit(r.PortLimitTriggered, RudderPortLimitBit) |
		boolBit(r.StarboardLimitTriggered, RudderStarboardLimitBit) |
		boolBit(r.Calibrating, RudderCalibratingBit) |
		boolBit(r.Calibrated, RudderCalibratedBit) |
		boolBit(r.Enabled, RudderEnabledBit)
	return f
}

func DecodeRudderDetails(f can.Frame, want Fields) RudderDetails {
	var r RudderDetails
	if want.Has(RudderPotentiometer) {
		r.Potentiometer = binary.LittleEndian.Uint16(f.Data[0:2])
	}
	if want.Has(RudderPortLimit) {
		r.PortLimit = binary.LittleEndian.Uint16(f.Data[2:4])
	}
	if want.Has(RudderStarboardLimit) {
		r.StarboardLimit = binary.LittleEndian.Uint16(f.Data[4:6])
	}
	flags := f.Data[6]
	if want.Has(RudderPortLimitTriggered) {
		r.PortLimitTriggered = flags&RudderPortLimitBit != 0
	}
	if want.Has(RudderStarboardLimitTriggered) {
		r.StarboardLimitTriggered = flags&RudderStarboardLimitBit != 0
	}
	if want.Has(RudderEnabled) {
		r.Enabled = flags&RudderEnabledBit != 0
	}
	if want.Has(RudderCalibrated) {
		r.Calibrated = flags&RudderCalibratedBit != 0
	}
	if want.Has(RudderCalibrating) {
		r.Calibrating = flags&RudderCalibratingBit != 0
	}
	return r
}
