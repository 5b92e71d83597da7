// Package stub answers every DNS datagram with the same canned response.
// It serves as the reference server that the probe's default case passes against.
package stub

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/wire"
)

// Responder implements transport.Responder with a fixed reply.
// Request content is never interpreted beyond debug logging.
type Responder struct {
	codec  wire.DNSCodec
	reply  []byte
	logger log.Logger
	served atomic.Uint64
}

// NewResponder builds a Responder that answers with header followed by the
// raw question bytes.
func NewResponder(codec wire.DNSCodec, header domain.Header, question []byte, logger log.Logger) *Responder {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Responder{
		codec:  codec,
		reply:  codec.EncodeMessage(domain.Message{Header: header, Tail: question}),
		logger: logger,
	}
}

// FromExpectation builds a Responder whose reply satisfies want.
func FromExpectation(codec wire.DNSCodec, want domain.Expectation, logger log.Logger) *Responder {
	return NewResponder(codec, want.Header, want.Question, logger)
}

// Respond returns a copy of the canned reply, whatever the request holds.
func (r *Responder) Respond(_ context.Context, request []byte, client net.Addr) ([]byte, error) {
	fields := map[string]any{"client": client.String()}
	if msg, err := r.codec.DecodeHeader(request); err == nil {
		fields["request"] = msg.Header.String()
	} else {
		fields["request_size"] = len(request)
	}
	r.logger.Debug(fields, "Answering with canned response")

	r.served.Add(1)
	out := make([]byte, len(r.reply))
	copy(out, r.reply)
	return out, nil
}

// Reply returns a copy of the canned reply.
func (r *Responder) Reply() []byte {
	out := make([]byte, len(r.reply))
	copy(out, r.reply)
	return out
}

// Served reports how many requests have been answered.
func (r *Responder) Served() uint64 {
	return r.served.Load()
}
