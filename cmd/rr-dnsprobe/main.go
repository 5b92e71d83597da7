package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/clock"
	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
	"github.com/haukened/rr-dnsprobe/internal/dns/config"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/transport"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/wire"
	"github.com/haukened/rr-dnsprobe/internal/dns/repos/history"
	"github.com/haukened/rr-dnsprobe/internal/dns/repos/history/bloom"
	"github.com/haukened/rr-dnsprobe/internal/dns/repos/history/bolt"
	"github.com/haukened/rr-dnsprobe/internal/dns/repos/history/lru"
	"github.com/haukened/rr-dnsprobe/internal/dns/repos/suite"
	"github.com/haukened/rr-dnsprobe/internal/dns/services/prober"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "rr-dnsprobe"

	// target false-positive rate of the history name filter
	historyBloomFPRate = 0.01
)

// Application holds all the components of a probe run
type Application struct {
	config   *config.AppConfig
	cases    []domain.Case
	prober   *prober.Prober
	reporter *prober.Reporter
	history  history.Repository
}

func main() {
	os.Exit(run())
}

// run returns the process exit code: 0 when every case passed, 1 otherwise.
func run() int {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	// Configure global logging
	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		return 1
	}
	defer log.Sync()

	log.Info(map[string]any{
		"version": version,
		"env":     cfg.Env,
		"target":  cfg.Target.Server,
		"timeout": cfg.Target.Timeout.String(),
		"buffer":  cfg.Target.Buffer,
		"suite":   cfg.Suite.Dir,
		"history": cfg.History.DB,
	}, "Starting "+appName)

	// Build application with all dependencies
	app, err := buildApplication(cfg, os.Stdout)
	if err != nil {
		log.Error(map[string]any{"error": err.Error()}, "Failed to build application")
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer app.Close()

	// Abort the exchange in flight on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig, out io.Writer) (*Application, error) {
	clk := &clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	codec := wire.NewUDPCodec(logger)

	cases, err := buildCases(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build cases: %w", err)
	}

	exchanger, err := transport.NewUDPExchanger(transport.Options{
		Server:     cfg.Target.Server,
		Timeout:    cfg.Target.Timeout,
		BufferSize: cfg.Target.Buffer,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exchanger: %w", err)
	}

	repo, err := buildHistory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	opts := prober.Options{
		Codec:     codec,
		Exchanger: exchanger,
		Clock:     clk,
		Logger:    logger,
	}
	if repo != nil {
		opts.History = repo
	}

	return &Application{
		config:   cfg,
		cases:    cases,
		prober:   prober.NewProber(opts),
		reporter: prober.NewReporter(out, cfg.Target.Server),
		history:  repo,
	}, nil
}

// buildCases loads the suite directory when configured, otherwise the single
// case described by the query and expect settings.
func buildCases(cfg *config.AppConfig) ([]domain.Case, error) {
	if cfg.Suite.Dir == "" {
		c, err := cfg.Case()
		if err != nil {
			return nil, err
		}
		return []domain.Case{c}, nil
	}

	cases, err := suite.LoadSuiteDirectory(cfg.Suite.Dir, suite.File{Query: cfg.Query, Expect: cfg.Expect})
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no case files in %s", cfg.Suite.Dir)
	}

	log.Info(map[string]any{
		"suite_dir": cfg.Suite.Dir,
		"cases":     len(cases),
	}, "Suite loaded")
	return cases, nil
}

// buildHistory opens the run history when a database path is configured.
func buildHistory(cfg *config.AppConfig) (history.Repository, error) {
	if cfg.History.DB == "" {
		return nil, nil
	}

	store, err := bolt.New(cfg.History.DB)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New(cfg.History.CacheSize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	repo, err := history.NewRepository(store, cache, bloom.NewFactory(), historyBloomFPRate)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	log.Info(map[string]any{
		"db":         cfg.History.DB,
		"cache_size": cfg.History.CacheSize,
		"cases":      store.Stats().Cases,
	}, "Run history opened")
	return repo, nil
}

// Run probes every case in order, writes the report, and returns the first failure.
func (app *Application) Run(ctx context.Context) error {
	outcomes, err := app.prober.RunSuite(ctx, app.cases)
	for _, o := range outcomes {
		app.reporter.Outcome(o)
	}
	app.reporter.Summary(outcomes, len(app.cases))

	if errors.Is(err, context.Canceled) {
		log.Warn(nil, "Probe interrupted")
	}
	return err
}

// Close logs history counters and releases the history database, if open.
func (app *Application) Close() {
	if app.history == nil {
		return
	}
	stats := app.history.RepoStats()
	log.Info(map[string]any{
		"cache_hits":      stats.Hits,
		"cache_misses":    stats.Misses,
		"cache_evictions": stats.Evictions,
		"cases":           stats.Store.Cases,
		"runs":            stats.Store.Runs,
	}, "Run history closed")
	if err := app.history.Close(); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "Error closing history")
	}
}
