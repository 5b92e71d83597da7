package domain

import "fmt"

// RRType is a DNS record type code.
type RRType uint16

// Query types the probe knows by name.
const (
	RRTypeA     RRType = 1
	RRTypeNS    RRType = 2
	RRTypeCNAME RRType = 5
	RRTypeSOA   RRType = 6
	RRTypePTR   RRType = 12
	RRTypeMX    RRType = 15
	RRTypeTXT   RRType = 16
	RRTypeAAAA  RRType = 28
	RRTypeSRV   RRType = 33
	RRTypeHTTPS RRType = 65
	RRTypeANY   RRType = 255
	RRTypeCAA   RRType = 257
)

var rrTypeNames = map[RRType]string{
	RRTypeA:     "A",
	RRTypeNS:    "NS",
	RRTypeCNAME: "CNAME",
	RRTypeSOA:   "SOA",
	RRTypePTR:   "PTR",
	RRTypeMX:    "MX",
	RRTypeTXT:   "TXT",
	RRTypeAAAA:  "AAAA",
	RRTypeSRV:   "SRV",
	RRTypeHTTPS: "HTTPS",
	RRTypeANY:   "ANY",
	RRTypeCAA:   "CAA",
}

var rrTypeByName = func() map[string]RRType {
	m := make(map[string]RRType, len(rrTypeNames))
	for t, s := range rrTypeNames {
		m[s] = t
	}
	return m
}()

// IsValid reports whether t is one of the named query types.
func (t RRType) IsValid() bool {
	_, ok := rrTypeNames[t]
	return ok
}

func (t RRType) String() string {
	if s, ok := rrTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// ParseRRType returns the type for a mnemonic such as "A" or "AAAA", or 0 if unknown.
func ParseRRType(s string) RRType {
	return rrTypeByName[s]
}
