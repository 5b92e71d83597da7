package prober

import (
	"fmt"
	"io"
	"time"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// Reporter writes the human-readable report for probe outcomes.
type Reporter struct {
	w      io.Writer
	target string
}

// NewReporter returns a Reporter writing to w. target is only used in headings.
func NewReporter(w io.Writer, target string) *Reporter {
	return &Reporter{w: w, target: target}
}

// Outcome writes the sent and received packets, each passed check, and the failure if any.
func (r *Reporter) Outcome(o Outcome) {
	r.printf("== %s: %s -> %s\n", o.Case.Name, o.Case.Question, r.target)
	r.printf("sent      %x (%d bytes)\n", o.Request, len(o.Request))
	if o.Response != nil {
		r.printf("received  %x (%d bytes in %s)\n", o.Response, len(o.Response), o.RTT.Round(time.Microsecond))
	}
	if o.Err == nil {
		h := o.Message.Header
		r.printf("header    %s\n", h)
		r.printf("          opcode=%d rcode=%s bits=[%s]\n", h.Opcode(), h.RCode(), h.FlagNames())
	}
	for _, c := range o.Result.Passed {
		r.printf("  ok      %-16s %s\n", c.Name, c.Detail)
	}
	if err := o.Failure(); err != nil {
		r.printf("  FAIL    %s\n", err)
	}
	if o.Regression && o.Previous != nil {
		r.printf("  REGRESSION: passed at %s, fails now", o.Previous.At.Format(time.RFC3339))
		if o.EarlierRuns > 0 {
			r.printf(" (%d/%d earlier runs passed)", o.EarlierPasses, o.EarlierRuns)
		}
		r.printf("\n")
	}
}

// Summary writes the final line: how many of total cases passed and where the run stopped.
func (r *Reporter) Summary(outcomes []Outcome, total int) {
	passed := 0
	var failed *Outcome
	for i := range outcomes {
		if outcomes[i].Passed() {
			passed++
		} else if failed == nil {
			failed = &outcomes[i]
		}
	}
	if failed == nil && passed == total {
		r.printf("PASS %d/%d cases\n", passed, total)
		return
	}
	if failed == nil {
		r.printf("FAIL %d/%d cases (interrupted)\n", passed, total)
		return
	}
	r.printf("FAIL %d/%d cases (stopped at %s: %s)\n", passed, total, failed.Case.Name, kindLabel(failed.Kind()))
}

func kindLabel(k domain.FailureKind) string {
	if k == domain.KindNone {
		return "unknown"
	}
	return string(k)
}

func (r *Reporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}
