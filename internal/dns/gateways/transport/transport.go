// Package transport moves probe datagrams over the network. The client side
// performs exactly one request/response exchange per call; the server side
// hands each received datagram to a Responder and writes back its answer.
package transport

import (
	"context"
	"net"
)

// Exchanger sends one request datagram and returns the first response datagram.
type Exchanger interface {
	Exchange(ctx context.Context, packet []byte) ([]byte, error)
}

// Responder builds the reply for a single received datagram.
// Returning a nil slice and nil error drops the request silently.
type Responder interface {
	Respond(ctx context.Context, request []byte, client net.Addr) ([]byte, error)
}

// Receive buffer sizes accepted for responses.
const (
	BufferSizeStandard = 512
	BufferSizeLarge    = 1024
)

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, request []byte, client net.Addr) ([]byte, error)

func (f ResponderFunc) Respond(ctx context.Context, request []byte, client net.Addr) ([]byte, error) {
	return f(ctx, request, client)
}
