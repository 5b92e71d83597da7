package domain

import "fmt"

// RRClass is a DNS class code.
type RRClass uint16

const (
	RRClassIN   RRClass = 1
	RRClassCH   RRClass = 3
	RRClassHS   RRClass = 4
	RRClassNONE RRClass = 254
	RRClassANY  RRClass = 255
)

var rrClassNames = map[RRClass]string{
	RRClassIN:   "IN",
	RRClassCH:   "CH",
	RRClassHS:   "HS",
	RRClassNONE: "NONE",
	RRClassANY:  "ANY",
}

// IsValid reports whether c is a known class.
func (c RRClass) IsValid() bool {
	_, ok := rrClassNames[c]
	return ok
}

func (c RRClass) String() string {
	if s, ok := rrClassNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

// ParseRRClass returns the class for a mnemonic such as "IN", or 0 if unknown.
func ParseRRClass(s string) RRClass {
	for c, name := range rrClassNames {
		if name == s {
			return c
		}
	}
	return 0
}
