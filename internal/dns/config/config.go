// Package config loads probe settings from defaults and PROBE_-prefixed
// environment variables, then validates them.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// EnvPrefix is stripped from environment variable names before mapping them to keys.
const EnvPrefix = "PROBE_"

// AppConfig is the full probe configuration.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	Log     LoggingConfig `koanf:"log"`
	Target  TargetConfig  `koanf:"target"`
	Query   QueryConfig   `koanf:"query"`
	Expect  ExpectConfig  `koanf:"expect"`
	Suite   SuiteConfig   `koanf:"suite"`
	History HistoryConfig `koanf:"history"`
	Stub    StubConfig    `koanf:"stub"`
}

// LoggingConfig controls log verbosity: "debug", "info", "warn", or "error".
type LoggingConfig struct {
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// TargetConfig describes the server under test.
type TargetConfig struct {
	Server  string        `koanf:"server" validate:"required,ip_port"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=1ms,lte=60s"`
	Buffer  int           `koanf:"buffer" validate:"oneof=512 1024"`
}

// QueryConfig is the request the probe sends. Its content is arbitrary as far
// as a canned server is concerned.
type QueryConfig struct {
	ID    uint16 `koanf:"id"`
	Flags uint16 `koanf:"flags"`
	Name  string `koanf:"name" validate:"dns_name"`
	Type  string `koanf:"type" validate:"required,rrtype"`
	Class string `koanf:"class" validate:"required,rrclass"`
}

// ExpectConfig is what a conforming response must contain.
type ExpectConfig struct {
	ID        uint16 `koanf:"id"`
	Flags     uint16 `koanf:"flags"`
	FlagsMode string `koanf:"flags_mode" validate:"required,oneof=exact mask"`
	QDCount   uint16 `koanf:"qdcount"`
	ANCount   uint16 `koanf:"ancount"`
	NSCount   uint16 `koanf:"nscount"`
	ARCount   uint16 `koanf:"arcount"`
	Name      string `koanf:"name" validate:"dns_name"`
	Type      string `koanf:"type" validate:"required,rrtype"`
	Class     string `koanf:"class" validate:"required,rrclass"`
}

// SuiteConfig points at an optional directory of case files. When Dir is
// empty the probe runs the single case built from Query and Expect.
type SuiteConfig struct {
	Dir string `koanf:"dir"`
}

// HistoryConfig enables the run history database when DB is set.
type HistoryConfig struct {
	DB        string `koanf:"db"`
	CacheSize int    `koanf:"cache_size" validate:"gte=0"`
}

// StubConfig is used by the reference stub server only.
type StubConfig struct {
	Listen string `koanf:"listen" validate:"required,ip_port"`
}

// DEFAULT_APP_CONFIG reproduces the reference scenario: query example.com from a
// server on 127.0.0.1:2053 and expect the canned codecrafters.io answer.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LoggingConfig{Level: "info"},
	Target: TargetConfig{
		Server:  "127.0.0.1:2053",
		Timeout: 5 * time.Second,
		Buffer:  512,
	},
	Query: QueryConfig{
		ID:    0xabcd,
		Flags: 0x0100,
		Name:  "example.com",
		Type:  "A",
		Class: "IN",
	},
	Expect: ExpectConfig{
		ID:        1234,
		Flags:     0x8000,
		FlagsMode: string(domain.FlagsExact),
		QDCount:   1,
		Name:      "codecrafters.io",
		Type:      "A",
		Class:     "IN",
	},
	History: HistoryConfig{CacheSize: 64},
	Stub:    StubConfig{Listen: "0.0.0.0:2053"},
}

// sections are the nested keys; PROBE_TARGET_SERVER maps to target.server
// while PROBE_EXPECT_FLAGS_MODE maps to expect.flags_mode.
var sections = []string{"log", "target", "query", "expect", "suite", "history", "stub"}

// envKey maps an environment variable name to a koanf key.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return key
}

// envLoader loads PROBE_ environment variables; replaceable in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKey(key), strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// validIPPort accepts "IP:port" with a literal IP and a port in 1..65535.
func validIPPort(fl validator.FieldLevel) bool {
	ip, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0
}

func validRRType(fl validator.FieldLevel) bool {
	return domain.ParseRRType(fl.Field().String()) != 0
}

func validRRClass(fl validator.FieldLevel) bool {
	return domain.ParseRRClass(fl.Field().String()) != 0
}

func validDNSName(fl validator.FieldLevel) bool {
	_, err := domain.ParseName(fl.Field().String())
	return err == nil
}

// registerValidation installs the custom tags; replaceable in tests.
var registerValidation = func(v *validator.Validate) error {
	for tag, fn := range map[string]validator.Func{
		"ip_port":  validIPPort,
		"rrtype":   validRRType,
		"rrclass":  validRRClass,
		"dns_name": validDNSName,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// NewValidator returns a validator with the probe's custom tags registered.
func NewValidator() (*validator.Validate, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	return validate, nil
}

// Load builds an AppConfig from defaults overlaid with the environment and validates it.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate, err := NewValidator()
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
