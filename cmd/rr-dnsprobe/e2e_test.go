package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-dnsprobe/internal/dns/config"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/transport"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/wire"
	"github.com/haukened/rr-dnsprobe/internal/dns/services/stub"
)

// startStub runs a canned-response server on a random loopback port.
func startStub(t *testing.T, header domain.Header) string {
	t.Helper()
	codec := wire.NewUDPCodec(nil)
	question := wire.EncodeQuestion([]string{"codecrafters", "io"}, domain.RRTypeA, domain.RRClassIN)
	srv := transport.NewUDPServer("127.0.0.1:0", stub.NewResponder(codec, header, question, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = srv.Stop()
	})
	return srv.Address()
}

// TestE2E_ReferenceScenario probes a conforming stub end to end
func TestE2E_ReferenceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	cfg := testConfig()
	cfg.Target.Server = startStub(t, domain.Header{ID: 1234, Flags: 0x8000, QDCount: 1})

	var out bytes.Buffer
	app, err := buildApplication(cfg, &out)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Run(context.Background()))

	report := out.String()
	assert.Contains(t, report, "sent      abcd01000001000000000000076578616d706c6503636f6d0000010001")
	assert.Contains(t, report, "received  04d2800000010000000000000c636f6465637261667465727302696f0000010001")
	assert.True(t, strings.HasSuffix(report, "PASS 1/1 cases\n"), report)
}

// TestE2E_FlagsMismatch shows a nonconforming server failing the run
func TestE2E_FlagsMismatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	cfg := testConfig()
	cfg.Target.Server = startStub(t, domain.Header{ID: 1234, Flags: 0x8180, QDCount: 1})

	var out bytes.Buffer
	app, err := buildApplication(cfg, &out)
	require.NoError(t, err)
	defer app.Close()

	err = app.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFlagsMismatch))
	assert.Contains(t, out.String(), "FlagsMismatch: got 0x8180, want 0x8000")

	// mask mode accepts the extra RD and RA bits
	cfg.Expect.FlagsMode = "mask"
	out.Reset()
	app, err = buildApplication(cfg, &out)
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Run(context.Background()))
}

// TestE2E_Timeout probes a socket that never answers
func TestE2E_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	silent, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer silent.Close()

	cfg := testConfig()
	cfg.Target.Server = silent.LocalAddr().String()
	cfg.Target.Timeout = 100 * time.Millisecond

	var out bytes.Buffer
	app, err := buildApplication(cfg, &out)
	require.NoError(t, err)
	defer app.Close()

	start := time.Now()
	err = app.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, out.String(), "FAIL 0/1 cases (stopped at default: Timeout)")
}

// TestE2E_HistoryFlagsRegression runs a passing then failing probe against the same database
func TestE2E_HistoryFlagsRegression(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	db := filepath.Join(t.TempDir(), "history.db")

	cfg := testConfig()
	cfg.History.DB = db
	cfg.Target.Server = startStub(t, domain.Header{ID: 1234, Flags: 0x8000, QDCount: 1})

	app, err := buildApplication(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))
	app.Close()

	cfg.Target.Server = startStub(t, domain.Header{ID: 4321, Flags: 0x8000, QDCount: 1})
	var out bytes.Buffer
	app, err = buildApplication(cfg, &out)
	require.NoError(t, err)
	defer app.Close()

	err = app.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIDMismatch))
	assert.Contains(t, out.String(), "fails now (1/1 earlier runs passed)")
}

// TestE2E_ConfigFromEnvironment drives the probe through config.Load
func TestE2E_ConfigFromEnvironment(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	t.Setenv("PROBE_TARGET_SERVER", startStub(t, domain.Header{ID: 77, Flags: 0x8400, QDCount: 1}))
	t.Setenv("PROBE_EXPECT_ID", "77")
	t.Setenv("PROBE_EXPECT_FLAGS", "0x8000")
	t.Setenv("PROBE_EXPECT_FLAGS_MODE", "mask")
	t.Setenv("PROBE_TARGET_TIMEOUT", "1s")

	cfg, err := config.Load()
	require.NoError(t, err)

	var out bytes.Buffer
	app, err := buildApplication(cfg, &out)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "PASS 1/1 cases")
}
