package domain

import "errors"

// Sentinel errors for every terminal condition a probe run can hit.
// Match with errors.Is; concrete failures carry got/want detail.
var (
	// ErrTimeout means no datagram arrived before the deadline.
	ErrTimeout = errors.New("timeout waiting for response")

	// ErrTruncatedMessage means the response is shorter than a DNS header.
	ErrTruncatedMessage = errors.New("message shorter than DNS header")

	// ErrTruncatedQuestion means the bytes after the header are shorter
	// than the expected question section.
	ErrTruncatedQuestion = errors.New("question section too short")

	ErrIDMismatch       = errors.New("id mismatch")
	ErrFlagsMismatch    = errors.New("flags mismatch")
	ErrQDCountMismatch  = errors.New("qdcount mismatch")
	ErrCountMismatch    = errors.New("record count mismatch")
	ErrQuestionMismatch = errors.New("question mismatch")

	// ErrTransport wraps any network failure other than a timeout.
	ErrTransport = errors.New("transport failure")

	// ErrCanceled means the run was stopped before a response arrived.
	ErrCanceled = errors.New("probe canceled")

	// ErrInvalidName is returned when a domain name cannot be encoded.
	ErrInvalidName = errors.New("invalid domain name")
)
