package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind names the condition that ended a probe run.
type FailureKind string

const (
	KindNone              FailureKind = ""
	KindTimeout           FailureKind = "Timeout"
	KindTruncatedMessage  FailureKind = "TruncatedMessage"
	KindTruncatedQuestion FailureKind = "TruncatedQuestion"
	KindIDMismatch        FailureKind = "IdMismatch"
	KindFlagsMismatch     FailureKind = "FlagsMismatch"
	KindQDCountMismatch   FailureKind = "QdCountMismatch"
	KindCountMismatch     FailureKind = "CountMismatch"
	KindQuestionMismatch  FailureKind = "QuestionMismatch"
	KindTransport         FailureKind = "Transport"
	KindCanceled          FailureKind = "Canceled"
	KindUnknown           FailureKind = "Unknown"
)

var kindSentinels = map[FailureKind]error{
	KindTimeout:           ErrTimeout,
	KindTruncatedMessage:  ErrTruncatedMessage,
	KindTruncatedQuestion: ErrTruncatedQuestion,
	KindIDMismatch:        ErrIDMismatch,
	KindFlagsMismatch:     ErrFlagsMismatch,
	KindQDCountMismatch:   ErrQDCountMismatch,
	KindCountMismatch:     ErrCountMismatch,
	KindQuestionMismatch:  ErrQuestionMismatch,
	KindTransport:         ErrTransport,
	KindCanceled:          ErrCanceled,
}

// KindOf maps an error returned anywhere in a probe run to its FailureKind.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// Failure is the first check that did not hold, with the observed and expected values.
type Failure struct {
	Kind   FailureKind
	Fields []string // diverging fields, set for CountMismatch
	Got    string
	Want   string
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if len(f.Fields) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(f.Fields, ","))
	}
	fmt.Fprintf(&b, ": got %s, want %s", f.Got, f.Want)
	return b.String()
}

// Unwrap exposes the sentinel for the failure kind so errors.Is works.
func (f *Failure) Unwrap() error {
	return kindSentinels[f.Kind]
}

// Check is a validation step that held.
type Check struct {
	Name   string
	Detail string
}

// Result is the outcome of validating one response: the checks that passed,
// in order, and the first failure if any.
type Result struct {
	Passed  []Check
	Failure *Failure
}

// OK reports whether every check passed.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}
