package domain

import (
	"fmt"
	"strings"
)

// HeaderSize is the fixed size of a DNS header on the wire.
const HeaderSize = 12

// Header flag bits used by the probe.
const (
	FlagQR uint16 = 1 << 15 // QR - message is a response
	FlagAA uint16 = 1 << 10 // AA - authoritative answer
	FlagTC uint16 = 1 << 9  // TC - truncated
	FlagRD uint16 = 1 << 8  // RD - recursion desired
	FlagRA uint16 = 1 << 7  // RA - recursion available
)

// Header is the fixed 12-octet DNS message header.
// Field order matches the wire order and must not change.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// IsResponse reports whether the QR bit is set.
func (h Header) IsResponse() bool {
	return h.Flags&FlagQR != 0
}

// Opcode returns the 4-bit opcode carried in the flags.
func (h Header) Opcode() uint8 {
	//gosec:disable G115 -- masked to 4 bits.
	return uint8((h.Flags >> 11) & 0x0F)
}

// RCode returns the response code carried in the low 4 bits of the flags.
func (h Header) RCode() RCode {
	//gosec:disable G115 -- masked to 4 bits.
	return RCode(uint8(h.Flags & 0x000F))
}

var flagNames = []struct {
	bit  uint16
	name string
}{
	{FlagQR, "qr"}, {FlagAA, "aa"}, {FlagTC, "tc"}, {FlagRD, "rd"}, {FlagRA, "ra"},
}

// FlagNames lists the set single-bit flags in wire order, dig style ("qr rd ra").
func (h Header) FlagNames() string {
	var set []string
	for _, f := range flagNames {
		if h.Flags&f.bit != 0 {
			set = append(set, f.name)
		}
	}
	return strings.Join(set, " ")
}

// String renders the header for diagnostics.
func (h Header) String() string {
	return fmt.Sprintf("id=%d flags=%#06x qd=%d an=%d ns=%d ar=%d",
		h.ID, h.Flags, h.QDCount, h.ANCount, h.NSCount, h.ARCount)
}
