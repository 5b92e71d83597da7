package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// Error message constants for consistent error handling
const (
	errServerRequired  = "target server address is required"
	errBufferSize      = "receive buffer size %d is below %d"
	errFailedToConnect = "failed to connect to %s: %w"
	errSetDeadline     = "failed to set deadline: %w"
	errWriteFailed     = "write failed: %w"
	errShortWrite      = "short write: %d of %d bytes"
	errReadFailed      = "read failed: %w"
	errNoResponse      = "no response from %s within %v"
	errCanceled        = "exchange canceled: %w"
)

// DefaultTimeout bounds the wait for a response when Options.Timeout is unset.
const DefaultTimeout = 5 * time.Second

// DialFunc establishes a network connection; replaceable for tests.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a UDPExchanger.
type Options struct {
	// Server is the target in host:port form.
	Server string
	// Timeout bounds the whole exchange, including the blocking receive.
	Timeout time.Duration
	// BufferSize is the receive buffer; datagrams beyond it are truncated by the kernel.
	BufferSize int

	// options to inject for testing purposes
	Dial   DialFunc
	Logger log.Logger
}

// UDPExchanger performs a single DNS request/response over UDP.
// Each call owns its socket and closes it before returning.
type UDPExchanger struct {
	server     string
	timeout    time.Duration
	bufferSize int
	dial       DialFunc
	logger     log.Logger
}

// NewUDPExchanger validates opts and applies defaults: 5s timeout, 512-byte buffer,
// a plain net.Dialer, and a no-op logger.
func NewUDPExchanger(opts Options) (*UDPExchanger, error) {
	if opts.Server == "" {
		return nil, errors.New(errServerRequired)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BufferSize == 0 {
		opts.BufferSize = BufferSizeStandard
	}
	if opts.BufferSize < BufferSizeStandard {
		return nil, fmt.Errorf(errBufferSize, opts.BufferSize, BufferSizeStandard)
	}
	if opts.Dial == nil {
		opts.Dial = (&net.Dialer{}).DialContext
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &UDPExchanger{
		server:     opts.Server,
		timeout:    opts.Timeout,
		bufferSize: opts.BufferSize,
		dial:       opts.Dial,
		logger:     opts.Logger,
	}, nil
}

// Server returns the target address.
func (x *UDPExchanger) Server() string {
	return x.server
}

// Timeout returns the configured exchange timeout.
func (x *UDPExchanger) Timeout() time.Duration {
	return x.timeout
}

// Exchange sends packet and waits for one response datagram.
// A missing response yields domain.ErrTimeout; any other network failure
// wraps domain.ErrTransport. There is no retry.
func (x *UDPExchanger) Exchange(ctx context.Context, packet []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	conn, err := x.dial(ctx, "udp", x.server)
	if err != nil {
		if ctx.Err() != nil {
			return nil, x.contextError(ctx)
		}
		return nil, fmt.Errorf("%w: "+errFailedToConnect, domain.ErrTransport, x.server, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			x.logger.Warn(map[string]any{
				"server": x.server,
				"error":  cerr.Error(),
			}, "Error closing UDP socket")
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("%w: "+errSetDeadline, domain.ErrTransport, err)
		}
	}

	type result struct {
		data []byte
		err  error
	}
	resultChan := make(chan result, 1)

	go func() {
		n, err := conn.Write(packet)
		if err != nil {
			resultChan <- result{err: x.ioError(errWriteFailed, err)}
			return
		}
		if n != len(packet) {
			resultChan <- result{err: fmt.Errorf("%w: "+errShortWrite, domain.ErrTransport, n, len(packet))}
			return
		}

		x.logger.Debug(map[string]any{
			"server": x.server,
			"size":   n,
		}, "Sent DNS query")

		buffer := make([]byte, x.bufferSize)
		n, err = conn.Read(buffer)
		if err != nil {
			resultChan <- result{err: x.ioError(errReadFailed, err)}
			return
		}
		resultChan <- result{data: buffer[:n]}
	}()

	select {
	case res := <-resultChan:
		if res.err != nil {
			return nil, res.err
		}
		x.logger.Debug(map[string]any{
			"server": x.server,
			"size":   len(res.data),
			"raw":    fmt.Sprintf("%x", res.data),
		}, "Received DNS response")
		return res.data, nil
	case <-ctx.Done():
		return nil, x.contextError(ctx)
	}
}

// ioError classifies a socket error: deadline expiry is a timeout, anything else is transport.
func (x *UDPExchanger) ioError(format string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: "+errNoResponse, domain.ErrTimeout, x.server, x.timeout)
	}
	return fmt.Errorf("%w: "+format, domain.ErrTransport, err)
}

func (x *UDPExchanger) contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: "+errNoResponse, domain.ErrTimeout, x.server, x.timeout)
	}
	return fmt.Errorf("%w: "+errCanceled, domain.ErrCanceled, ctx.Err())
}

var _ Exchanger = (*UDPExchanger)(nil)
