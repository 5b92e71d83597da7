package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// Limits from RFC 1035 section 2.3.4.
const (
	MaxLabelLength = 63
	MaxNameLength  = 255
)

// ParseName splits a presentation-format domain name into its ordered labels.
// Label bytes are kept as given, case and underscores included, since the
// question section is compared octet for octet. Labels that are not ASCII are
// converted to their punycode A-label. The root name ("" or ".") yields no labels.
func ParseName(name string) ([]string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(name), ".")
	if trimmed == "" {
		return nil, nil
	}
	labels := strings.Split(trimmed, ".")
	// length bytes plus label bytes plus the root terminator
	wire := 1
	for i, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("%w: %q: empty label", ErrInvalidName, name)
		}
		if !isASCII(label) {
			ascii, err := idna.Punycode.ToASCII(label)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
			}
			labels[i] = ascii
		}
		if len(labels[i]) > MaxLabelLength {
			return nil, fmt.Errorf("%w: label too long: %s", ErrInvalidName, labels[i])
		}
		wire += 1 + len(labels[i])
	}
	if wire > MaxNameLength {
		return nil, fmt.Errorf("%w: %q encodes to %d octets", ErrInvalidName, name, wire)
	}
	return labels, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
