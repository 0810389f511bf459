package can

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name         string
		id           uint32
		data         []byte
		wantExtended bool
		wantLen      uint8
	}{
		{name: "standard empty", id: 0x402, data: nil, wantExtended: false, wantLen: 0},
		{name: "standard full", id: 0x7FF, data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, wantExtended: false, wantLen: 8},
		{name: "extended", id: 0x09F80102, data: []byte{1, 2}, wantExtended: true, wantLen: 2},
		{name: "payload truncated", id: 0x80, data: bytes.Repeat([]byte{0xAA}, 12), wantExtended: false, wantLen: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(tt.id, tt.data)
			if f.Extended != tt.wantExtended {
				t.Errorf("Extended = %v, want %v", f.Extended, tt.wantExtended)
			}
			if f.Len != tt.wantLen {
				t.Errorf("Len = %d, want %d", f.Len, tt.wantLen)
			}
			if err := f.Validate(); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if got := f.Payload(); len(got) != int(tt.wantLen) {
				t.Errorf("len(Payload()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  error
	}{
		{name: "std id too large", frame: Frame{ID: 0x800}, want: ErrInvalidID},
		{name: "ext id too large", frame: Frame{ID: 0x20000000, Extended: true}, want: ErrInvalidID},
		{name: "len too large", frame: Frame{ID: 0x10, Len: 9}, want: ErrInvalidLen},
		{name: "small id marked extended", frame: Frame{ID: 0x10, Extended: true}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.frame.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got, want := NewFrame(0x84, []byte{0x20, 0x00}).String(), "084#20 00"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := NewExtendedFrame(0x09F80102, []byte{0x01}).String(), "09F80102#01"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
