// Package validator checks a decoded DNS response against an Expectation.
//
// Checks run in a fixed order and stop at the first failure:
// id, flags, qdcount, an/ns/ar counts, question length, question bytes.
// Callers may rely on that order: a response that is wrong in several ways
// always reports the earliest check.
package validator

import (
	"bytes"
	"fmt"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// Check names, in evaluation order.
const (
	CheckID             = "id"
	CheckFlags          = "flags"
	CheckQDCount        = "qdcount"
	CheckCounts         = "counts"
	CheckQuestionLength = "question_length"
	CheckQuestion       = "question"
)

type check struct {
	name string
	run  func(msg domain.Message, want domain.Expectation) (string, *domain.Failure)
}

var checks = []check{
	{CheckID, checkID},
	{CheckFlags, checkFlags},
	{CheckQDCount, checkQDCount},
	{CheckCounts, checkCounts},
	{CheckQuestionLength, checkQuestionLength},
	{CheckQuestion, checkQuestion},
}

// Validate runs every check in order and returns at the first failure.
func Validate(msg domain.Message, want domain.Expectation) domain.Result {
	var res domain.Result
	for _, c := range checks {
		detail, fail := c.run(msg, want)
		if fail != nil {
			res.Failure = fail
			return res
		}
		res.Passed = append(res.Passed, domain.Check{Name: c.name, Detail: detail})
	}
	return res
}

func checkID(msg domain.Message, want domain.Expectation) (string, *domain.Failure) {
	got := msg.Header.ID
	if got != want.Header.ID {
		return "", &domain.Failure{
			Kind: domain.KindIDMismatch,
			Got:  fmt.Sprintf("%d", got),
			Want: fmt.Sprintf("%d", want.Header.ID),
		}
	}
	return fmt.Sprintf("%d", got), nil
}

func checkFlags(msg domain.Message, want domain.Expectation) (string, *domain.Failure) {
	got := msg.Header.Flags
	var ok bool
	switch want.FlagsMode {
	case domain.FlagsMask:
		ok = got&want.Header.Flags == want.Header.Flags
	default:
		ok = got == want.Header.Flags
	}
	if !ok {
		return "", &domain.Failure{
			Kind: domain.KindFlagsMismatch,
			Got:  fmt.Sprintf("%#06x", got),
			Want: fmt.Sprintf("%#06x", want.Header.Flags),
		}
	}
	return fmt.Sprintf("%#06x", got), nil
}

func checkQDCount(msg domain.Message, want domain.Expectation) (string, *domain.Failure) {
	got := msg.Header.QDCount
	if got != want.Header.QDCount {
		return "", &domain.Failure{
			Kind: domain.KindQDCountMismatch,
			Got:  fmt.Sprintf("%d", got),
			Want: fmt.Sprintf("%d", want.Header.QDCount),
		}
	}
	return fmt.Sprintf("%d", got), nil
}

// checkCounts compares the answer, authority, and additional counts as a group
// and names every field that diverges.
func checkCounts(msg domain.Message, want domain.Expectation) (string, *domain.Failure) {
	h, w := msg.Header, want.Header
	var fields []string
	if h.ANCount != w.ANCount {
		fields = append(fields, "ancount")
	}
	if h.NSCount != w.NSCount {
		fields = append(fields, "nscount")
	}
	if h.ARCount != w.ARCount {
		fields = append(fields, "arcount")
	}
	got := fmt.Sprintf("ancount=%d nscount=%d arcount=%d", h.ANCount, h.NSCount, h.ARCount)
	if len(fields) > 0 {
		return "", &domain.Failure{
			Kind:   domain.KindCountMismatch,
			Fields: fields,
			Got:    got,
			Want:   fmt.Sprintf("ancount=%d nscount=%d arcount=%d", w.ANCount, w.NSCount, w.ARCount),
		}
	}
	return got, nil
}

func checkQuestionLength(msg domain.Message, want domain.Expectation) (string, *domain.Failure) {
	if len(msg.Tail) < len(want.Question) {
		return "", &domain.Failure{
			Kind: domain.KindTruncatedQuestion,
			Got:  fmt.Sprintf("%d bytes", len(msg.Tail)),
			Want: fmt.Sprintf(">= %d bytes", len(want.Question)),
		}
	}
	return fmt.Sprintf("%d bytes", len(want.Question)), nil
}

// checkQuestion compares only the expected-length prefix; anything after it
// (answers, additional records) is ignored.
func checkQuestion(msg domain.Message, want domain.Expectation) (string, *domain.Failure) {
	got := msg.Tail[:len(want.Question)]
	if !bytes.Equal(got, want.Question) {
		return "", &domain.Failure{
			Kind: domain.KindQuestionMismatch,
			Got:  fmt.Sprintf("%x", got),
			Want: fmt.Sprintf("%x", want.Question),
		}
	}
	return fmt.Sprintf("%x", got), nil
}
