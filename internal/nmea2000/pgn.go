// Package nmea2000 extracts parameter group numbers from 29-bit identifiers
// and decodes the single-frame navigation PGNs this node listens to.
//
// Every parser has the shape
//
//	ParseX(data []byte, want Fields) (X, Fields)
//
// It computes only the requested fields and returns the subset of want that
// decoded. A field fails when its bytes are missing or hold the protocol's
// "not available" value. Bit positions follow the field order of X.
package nmea2000

import (
	"fmt"

	"canbridge/internal/can"
)

type PGN uint32

const (
	PGNSystemTime            PGN = 126992
	PGNRudder                PGN = 127245
	PGNVesselHeading         PGN = 127250
	PGNBatteryStatus         PGN = 127508
	PGNSpeed                 PGN = 128259
	PGNWaterDepth            PGN = 128267
	PGNPositionRapid         PGN = 129025
	PGNCOGSOGRapid           PGN = 129026
	PGNWindData              PGN = 130306
	PGNEnvironmental         PGN = 130310
	PGNEnvironmentalHumidity PGN = 130311
)

var pgnNames = map[PGN]string{
	PGNSystemTime:            "system-time",
	PGNRudder:                "rudder",
	PGNVesselHeading:         "vessel-heading",
	PGNBatteryStatus:         "battery-status",
	PGNSpeed:                 "speed",
	PGNWaterDepth:            "water-depth",
	PGNPositionRapid:         "position-rapid",
	PGNCOGSOGRapid:           "cog-sog-rapid",
	PGNWindData:              "wind-data",
	PGNEnvironmental:         "environmental",
	PGNEnvironmentalHumidity: "environmental-humidity",
}

func (p PGN) String() string {
	if n, ok := pgnNames[p]; ok {
		return fmt.Sprintf("%d %s", uint32(p), n)
	}
	return fmt.Sprintf("%d", uint32(p))
}

// Known reports whether p is one of the PGNs with a parser in this package.
func (p PGN) Known() bool {
	_, ok := pgnNames[p]
	return ok
}

const (
	AddressGlobal uint8 = 255

	pduSpecificLimit = 240
)

// Header is the ISO 11783 view of a 29-bit identifier.
type Header struct {
	Priority    uint8
	PGN         PGN
	Source      uint8
	Destination uint8
}

// DecodeID splits a 29-bit identifier. For PDU1 (addressed) groups the PS
// byte is the destination and is not part of the PGN; PDU2 groups are
// broadcast.
func DecodeID(id uint32) Header {
	h := Header{
		Priority: uint8((id >> 26) & 0x7),
		Source:   uint8(id & 0xFF),
	}
	pgn := (id >> 8) & 0x3FFFF
	pf := (id >> 16) & 0xFF
	if pf < pduSpecificLimit {
		h.Destination = uint8(pgn & 0xFF)
		pgn &= 0x3FF00
	} else {
		h.Destination = AddressGlobal
	}
	h.PGN = PGN(pgn)
	return h
}

// EncodeID is the inverse of DecodeID.
func EncodeID(h Header) uint32 {
	pgn := uint32(h.PGN) & 0x3FFFF
	if (pgn>>8)&0xFF < pduSpecificLimit {
		pgn = pgn&0x3FF00 | uint32(h.Destination)
	}
	return uint32(h.Priority&0x7)<<26 | pgn<<8 | uint32(h.Source)
}

// Frame wraps a payload in an extended frame addressed by h.
func Frame(h Header, payload []byte) can.Frame {
	return can.NewExtendedFrame(EncodeID(h), payload)
}
