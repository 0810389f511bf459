package canmsg

import (
	"encoding/binary"

	"canbridge/internal/can"
)

// Status is the periodic node health beacon.
type Status struct {
	NodeID      uint8
	CPULoad     uint8 // percent
	Temperature int8  // degrees Celsius
	Voltage     uint8 // 0.1 V
	Status      uint16
	Errors      uint16
}

const (
	StatusNodeID Fields = 1 << iota
	StatusCPULoad
	StatusTemperature
	StatusVoltage
	StatusBits
	StatusErrors
)

func (Status) Kind() Kind         { return KindStatus }
func (s Status) Frame() can.Frame { return EncodeStatus(s) }

func EncodeStatus(s Status) can.Frame {
	f := newFrame(KindStatus)
	f.Data[0] = s.NodeID
	f.Data[1] = s.CPULoad
	f.Data[2] = byte(s.Temperature)
	f.Data[3] = s.Voltage
	binary.LittleEndian.PutUint16(f.Data[4:6], s.Status)
	binary.LittleEndian.PutUint16(f.Data[6:8], s.Errors)
	return f
}

func DecodeStatus(f can.Frame, want Fields) Status {
	var s Status
	if want.Has(StatusNodeID) {
		s.NodeID = f.Data[0]
	}
	if want.Has(StatusCPULoad) {
		s.CPULoad = f.Data[1]
	}
	if want.Has(StatusTemperature) {
		s.Temperature = int8(f.Data[2])
	}
	if want.Has(StatusVoltage) {
		s.Voltage = f.Data[3]
	}
	if want.Has(StatusBits) {
		s.Status = binary.LittleEndian.Uint16(f.Data[4:6])
	}
	if want.Has(StatusErrors) {
		s.Errors = binary.LittleEndian.Uint16(f.Data[6:8])
	}
	return s
}
