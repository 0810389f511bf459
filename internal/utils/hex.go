package utils

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const hexd = "0123456789ABCDEF"

// HexID formats a CAN identifier as three hex digits for standard frames and
// eight for extended ones, matching candump notation.
func HexID(id uint32, extended bool) string {
	n := 3
	if extended {
		n = 8
	}
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = hexd[id&0xF]
		id >>= 4
	}
	return string(out)
}

// BytesToHex converts a byte slice to an upper-case hexadecimal string.
func BytesToHex(b []byte) string {
	out := make([]byte, 0, len(b)*2)
	for _, x := range b {
		out = append(out, hexd[x>>4], hexd[x&0x0F])
	}
	return string(out)
}

// ParseHexBytes accepts "0102FF", "01 02 ff" or "01:02:ff".
func ParseHexBytes(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", ".", "").Replace(strings.TrimSpace(s))
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex %q: %w", s, err)
	}
	return b, nil
}

// ParseHexID parses an identifier with or without a 0x prefix.
func ParseHexID(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 29)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	return uint32(v), nil
}
