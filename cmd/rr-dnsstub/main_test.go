package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-dnsprobe/internal/dns/config"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/transport"
)

func TestBuildApplication_InvalidExpectation(t *testing.T) {
	cfg := config.DEFAULT_APP_CONFIG
	cfg.Expect.Type = "NOPE"

	_, err := buildApplication(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canned response")
}

// TestApplication_Integration answers a probe and shuts down on cancel
func TestApplication_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := config.DEFAULT_APP_CONFIG
	cfg.Stub.Listen = "127.0.0.1:0"

	app, err := buildApplication(&cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appErr := make(chan error, 1)
	go func() {
		appErr <- app.Run(ctx)
	}()

	// Wait for the socket to bind
	var addr string
	require.Eventually(t, func() bool {
		addr = app.server.Address()
		_, port, err := net.SplitHostPort(addr)
		return err == nil && port != "0"
	}, 2*time.Second, 10*time.Millisecond)

	exchanger, err := transport.NewUDPExchanger(transport.Options{Server: addr, Timeout: time.Second})
	require.NoError(t, err)

	reply, err := exchanger.Exchange(context.Background(), []byte{0xab, 0xcd})
	require.NoError(t, err)
	assert.Equal(t, app.responder.Reply(), reply)
	assert.Equal(t, uint64(1), app.responder.Served())

	cancel()
	select {
	case err := <-appErr:
		assert.NoError(t, err, "Application should shutdown gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("Application failed to shutdown within timeout")
	}
}
