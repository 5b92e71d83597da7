package domain

import "fmt"

// FlagsMode selects how response flags are compared against the expectation.
type FlagsMode string

const (
	// FlagsExact requires the response flags to equal the expected value.
	FlagsExact FlagsMode = "exact"
	// FlagsMask requires every bit set in the expected value to be set in the response.
	FlagsMask FlagsMode = "mask"
)

// IsValid reports whether m is a known mode.
func (m FlagsMode) IsValid() bool {
	return m == FlagsExact || m == FlagsMask
}

// Expectation describes what a conforming response must contain.
// Question holds the exact wire bytes the response's question section must start with.
type Expectation struct {
	Header    Header
	Question  []byte
	FlagsMode FlagsMode
}

// Validate rejects expectations the validator could never pass.
func (e Expectation) Validate() error {
	if !e.FlagsMode.IsValid() {
		return fmt.Errorf("unsupported flags mode: %q", e.FlagsMode)
	}
	if !e.Header.IsResponse() {
		return fmt.Errorf("expected flags %#06x do not set the response bit", e.Header.Flags)
	}
	return nil
}

// Case is a named probe: what to send and what must come back.
// The two halves are independent on purpose; a canned server answers
// the same way regardless of the query.
type Case struct {
	Name     string
	Query    Header
	Question Question
	Expect   Expectation
}
