// Package prober drives a probe run: encode the query, exchange it with the
// target, decode the response, and validate it.
package prober

import (
	"context"
	"fmt"
	"time"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/clock"
	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/wire"
	"github.com/haukened/rr-dnsprobe/internal/dns/services/validator"
)

// Prober runs probe cases against one target and validates each response.
type Prober struct {
	codec     wire.DNSCodec
	exchanger Exchanger
	history   History
	clock     clock.Clock
	logger    log.Logger
}

// Options wires a Prober. History is optional.
type Options struct {
	Codec     wire.DNSCodec
	Exchanger Exchanger
	History   History
	Clock     clock.Clock
	Logger    log.Logger
}

// NewProber returns a Prober. Clock, Logger, and Codec default to the real
// clock, a no-op logger, and the UDP codec.
func NewProber(opts Options) *Prober {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.Codec == nil {
		opts.Codec = wire.NewUDPCodec(opts.Logger)
	}
	return &Prober{
		codec:     opts.Codec,
		exchanger: opts.Exchanger,
		history:   opts.History,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
}

// Outcome is everything observed while running one case.
type Outcome struct {
	Case     domain.Case
	Request  []byte
	Response []byte
	Message  domain.Message
	Result   domain.Result
	// Err is set when no response could be validated: a timeout, a transport
	// failure, or a datagram shorter than a header.
	Err error
	RTT time.Duration
	// Previous is the last recorded run of the same case, when history is enabled.
	Previous   *domain.RunRecord
	Regression bool
	// EarlierRuns and EarlierPasses count the recorded runs before this one.
	// They are only filled in for a regression.
	EarlierRuns   int
	EarlierPasses int
}

// Passed reports whether the response arrived and every check held.
func (o Outcome) Passed() bool {
	return o.Err == nil && o.Result.OK()
}

// Failure returns the error that failed the case, or nil.
func (o Outcome) Failure() error {
	if o.Err != nil {
		return o.Err
	}
	return o.Result.Err()
}

// Kind classifies the failure; KindNone when the case passed.
func (o Outcome) Kind() domain.FailureKind {
	return domain.KindOf(o.Failure())
}

// Run executes a single case. Errors are reported in the Outcome, never retried.
func (p *Prober) Run(ctx context.Context, c domain.Case) Outcome {
	out := Outcome{Case: c}
	out.Request = p.codec.EncodeQuery(c.Query, c.Question)

	p.logger.Debug(map[string]any{
		"case":     c.Name,
		"question": c.Question.String(),
		"size":     len(out.Request),
	}, "Sending probe")

	start := p.clock.Now()
	resp, err := p.exchanger.Exchange(ctx, out.Request)
	out.RTT = p.clock.Now().Sub(start)
	if err != nil {
		out.Err = err
		p.finish(&out)
		return out
	}
	out.Response = resp

	msg, err := p.codec.DecodeHeader(resp)
	if err != nil {
		out.Err = fmt.Errorf("decode response: %w", err)
		p.finish(&out)
		return out
	}
	out.Message = msg
	out.Result = validator.Validate(msg, c.Expect)

	p.finish(&out)
	return out
}

// RunSuite runs cases in order and stops at the first failing case.
// The returned error is that case's failure.
func (p *Prober) RunSuite(ctx context.Context, cases []domain.Case) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(cases))
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return outcomes, fmt.Errorf("suite interrupted before %s: %w", c.Name, err)
		}
		out := p.Run(ctx, c)
		outcomes = append(outcomes, out)
		if !out.Passed() {
			return outcomes, fmt.Errorf("case %s: %w", c.Name, out.Failure())
		}
	}
	return outcomes, nil
}

// finish logs the outcome and records it in history when configured.
func (p *Prober) finish(out *Outcome) {
	fields := map[string]any{
		"case": out.Case.Name,
		"rtt":  out.RTT.String(),
	}
	if out.Passed() {
		p.logger.Info(fields, "Probe passed")
	} else {
		fields["kind"] = string(out.Kind())
		fields["error"] = out.Failure().Error()
		p.logger.Warn(fields, "Probe failed")
	}

	if p.history == nil {
		return
	}

	rec := domain.RunRecord{
		Case:   out.Case.Name,
		At:     p.clock.Now(),
		Passed: out.Passed(),
		Kind:   out.Kind(),
		RTT:    out.RTT,
	}

	prev, ok, err := p.history.Last(out.Case.Name)
	if err != nil {
		p.logger.Warn(map[string]any{
			"case":  out.Case.Name,
			"error": err.Error(),
		}, "History lookup failed")
	} else if ok {
		out.Previous = &prev
		out.Regression = domain.Regressed(prev, rec)
	}
	if out.Regression {
		p.countEarlierRuns(out)
	}

	if err := p.history.Record(rec); err != nil {
		p.logger.Warn(map[string]any{
			"case":  out.Case.Name,
			"error": err.Error(),
		}, "History record failed")
	}
}

func (p *Prober) countEarlierRuns(out *Outcome) {
	runs, err := p.history.Runs(out.Case.Name)
	if err != nil {
		p.logger.Warn(map[string]any{
			"case":  out.Case.Name,
			"error": err.Error(),
		}, "History scan failed")
		return
	}
	out.EarlierRuns = len(runs)
	for _, r := range runs {
		if r.Passed {
			out.EarlierPasses++
		}
	}
}
