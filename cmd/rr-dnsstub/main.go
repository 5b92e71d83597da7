package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
	"github.com/haukened/rr-dnsprobe/internal/dns/config"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/transport"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/wire"
	"github.com/haukened/rr-dnsprobe/internal/dns/services/stub"
)

const (
	version = "0.1.0-dev"
	appName = "rr-dnsstub"
)

// Application holds the stub server and its canned responder
type Application struct {
	config    *config.AppConfig
	server    *transport.UDPServer
	responder *stub.Responder
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Failed to build application")
	}

	log.Info(map[string]any{
		"version": version,
		"listen":  cfg.Stub.Listen,
		"reply":   fmt.Sprintf("%x", app.responder.Reply()),
	}, "Starting "+appName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Server failed")
	}
	log.Info(map[string]any{"served": app.responder.Served()}, "Stub server stopped")
}

// buildApplication answers with whatever the configured expectation demands,
// so the default probe case passes against it.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()
	codec := wire.NewUDPCodec(logger)

	c, err := cfg.Case()
	if err != nil {
		return nil, fmt.Errorf("failed to build canned response: %w", err)
	}
	responder := stub.FromExpectation(codec, c.Expect, logger)

	return &Application{
		config:    cfg,
		server:    transport.NewUDPServer(cfg.Stub.Listen, responder, logger),
		responder: responder,
	}, nil
}

// Run starts the server and blocks until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	if err := app.server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start UDP server: %w", err)
	}
	<-ctx.Done()
	return app.server.Stop()
}
