// Package can holds the bus frame value type shared by the codec, the
// transports and the dispatch loop.
package can

import (
	"errors"
	"fmt"
)

const (
	MaxDataLen = 8

	maxStdID = 0x7FF
	maxExtID = 0x1FFFFFFF
)

var (
	ErrInvalidID  = errors.New("can: invalid identifier")
	ErrInvalidLen = errors.New("can: invalid data length")
)

// Frame is one classical CAN transmission: an 11-bit or 29-bit identifier
// and up to eight payload bytes.
type Frame struct {
	ID       uint32
	Extended bool
	Len      uint8
	Data     [MaxDataLen]byte
}

// NewFrame builds a standard frame when id fits in 11 bits and an extended
// frame otherwise. Payload bytes past the eighth are ignored.
func NewFrame(id uint32, data []byte) Frame {
	f := Frame{ID: id, Extended: id > maxStdID}
	n := copy(f.Data[:], data)
	f.Len = uint8(n)
	return f
}

// NewExtendedFrame builds a 29-bit frame regardless of the identifier value.
func NewExtendedFrame(id uint32, data []byte) Frame {
	f := NewFrame(id, data)
	f.Extended = true
	return f
}

func (f Frame) Validate() error {
	if f.Len > MaxDataLen {
		return ErrInvalidLen
	}
	if f.Extended && f.ID > maxExtID {
		return ErrInvalidID
	}
	if !f.Extended && f.ID > maxStdID {
		return ErrInvalidID
	}
	return nil
}

// Payload returns the valid bytes of the frame.
func (f *Frame) Payload() []byte {
	n := f.Len
	if n > MaxDataLen {
		n = MaxDataLen
	}
	return f.Data[:n]
}

func (f Frame) String() string {
	if f.Extended {
		return fmt.Sprintf("%08X#% X", f.ID, f.Payload())
	}
	return fmt.Sprintf("%03X#% X", f.ID, f.Payload())
}
