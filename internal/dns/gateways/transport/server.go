package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
)

// UDPServer listens for DNS datagrams and answers each one through a Responder.
// It handles socket lifetime and packet I/O; what to answer is the Responder's job.
type UDPServer struct {
	addr      string
	conn      *net.UDPConn
	responder Responder
	logger    log.Logger

	// Synchronization for graceful shutdown
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	handlers sync.WaitGroup
}

// NewUDPServer creates a server bound to addr once started.
func NewUDPServer(addr string, responder Responder, logger log.Logger) *UDPServer {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &UDPServer{
		addr:      addr,
		responder: responder,
		logger:    logger,
	}
}

// Start binds the UDP socket and starts the receive loop.
func (s *UDPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("UDP server already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address %s: %w", s.addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP socket on %s: %w", s.addr, err)
	}

	s.conn = conn
	s.running = true
	s.stopCh = make(chan struct{})

	s.logger.Info(map[string]any{
		"transport": "udp",
		"address":   conn.LocalAddr().String(),
	}, "DNS stub server started")

	go s.listenLoop(ctx, conn, s.stopCh)

	return nil
}

// Stop closes the socket and waits for in-flight replies to finish.
func (s *UDPServer) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}

	close(s.stopCh)
	s.running = false

	var closeErr error
	if s.conn != nil {
		closeErr = s.conn.Close()
		if closeErr != nil {
			s.logger.Warn(map[string]any{
				"error": closeErr.Error(),
			}, "Error closing UDP connection")
		}
	}
	s.mu.Unlock()

	s.handlers.Wait()

	s.logger.Info(map[string]any{
		"transport": "udp",
		"address":   s.addr,
	}, "DNS stub server stopped")

	return closeErr
}

// Address returns the bound address while running, otherwise the configured one.
func (s *UDPServer) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.running && s.conn != nil {
		return s.conn.LocalAddr().String()
	}
	return s.addr
}

func (s *UDPServer) isRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// listenLoop reads datagrams until the context ends or Stop closes the socket.
func (s *UDPServer) listenLoop(ctx context.Context, conn *net.UDPConn, stopCh chan struct{}) {
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-stopCh:
		}
	}()

	buffer := make([]byte, BufferSizeStandard)
	for {
		n, clientAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if !s.isRunning() {
				s.logger.Debug(nil, "UDP server receive loop exiting")
				return
			}
			s.logger.Warn(map[string]any{
				"error": err.Error(),
			}, "Failed to read UDP packet")
			continue
		}

		packet := make([]byte, n)
		copy(packet, buffer[:n])

		// Add under the lock so Stop never waits on a group that is still growing.
		s.mu.RLock()
		if !s.running {
			s.mu.RUnlock()
			return
		}
		s.handlers.Add(1)
		s.mu.RUnlock()
		go s.handlePacket(ctx, conn, packet, clientAddr)
	}
}

// handlePacket answers a single datagram.
func (s *UDPServer) handlePacket(ctx context.Context, conn *net.UDPConn, data []byte, clientAddr *net.UDPAddr) {
	defer s.handlers.Done()

	s.logger.Debug(map[string]any{
		"client": clientAddr.String(),
		"size":   len(data),
		"raw":    fmt.Sprintf("%x", data),
	}, "Received datagram")

	reply, err := s.responder.Respond(ctx, data, clientAddr)
	if err != nil {
		s.logger.Warn(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
		}, "Responder failed")
		return
	}
	if reply == nil {
		return
	}

	if _, err := conn.WriteToUDP(reply, clientAddr); err != nil {
		s.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
		}, "Failed to send reply")
		return
	}

	s.logger.Debug(map[string]any{
		"client": clientAddr.String(),
		"size":   len(reply),
		"raw":    fmt.Sprintf("%x", reply),
	}, "Sent reply")
}
