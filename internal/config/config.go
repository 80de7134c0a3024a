// Package config loads relay router settings from the environment, an
// optional .env file, and command-line flags.
//
// Environment variables:
//   - RELAY_METHOD: "consistent-hashing" (default) or "rules"
//   - RELAY_REPLICATION_FACTOR: distinct servers per key (default: 1)
//   - RELAY_VNODES: virtual nodes per instance (default: 128)
//   - RELAY_DESTINATIONS: "host:port[:instance],..." destination pool
//   - RELAY_RULES: path of the YAML rules file (required for "rules")
//   - RELAY_KEYFUNC: key function spec, e.g. "prefix:2" (default: identity)
//   - RELAY_LISTEN_ADDR: lookup service address (default: :2004)
//   - LOG_LEVEL: debug, info, warn or error (default: info)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"relayrouter/internal/destination"
	"relayrouter/internal/ring"
	"relayrouter/internal/router"
)

// Config holds the relay router configuration.
type Config struct {
	Method            string
	ReplicationFactor int
	VNodes            int
	Destinations      []destination.Destination
	RulesPath         string
	KeyFunction       string
	ListenAddr        string
	LogLevel          string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Method:            router.MethodConsistentHashing,
		ReplicationFactor: 1,
		VNodes:            ring.DefaultVNodes,
		Destinations:      []destination.Destination{},
		ListenAddr:        ":2004",
		LogLevel:          "info",
	}
}

// Load reads envFiles (or ./.env when none are given and it exists) into the
// process environment, then builds a Config from environment variables.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to read env files %v: %w", envFiles, err)
	}

	cfg := Default()
	cfg.Method = getEnv("RELAY_METHOD", cfg.Method)
	cfg.RulesPath = getEnv("RELAY_RULES", cfg.RulesPath)
	cfg.KeyFunction = getEnv("RELAY_KEYFUNC", cfg.KeyFunction)
	cfg.ListenAddr = getEnv("RELAY_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.ReplicationFactor, err = getEnvInt("RELAY_REPLICATION_FACTOR", cfg.ReplicationFactor); err != nil {
		return nil, err
	}
	if cfg.VNodes, err = getEnvInt("RELAY_VNODES", cfg.VNodes); err != nil {
		return nil, err
	}
	if raw := os.Getenv("RELAY_DESTINATIONS"); raw != "" {
		if cfg.Destinations, err = ParseDestinations(raw); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// ParseDestinations parses a comma-separated list of destinations in the
// format "host1:port1:instance1,host2:port2:instance2".
func ParseDestinations(s string) ([]destination.Destination, error) {
	dests, err := destination.ParseList(s)
	if err != nil {
		return nil, fmt.Errorf("invalid destinations: %w", err)
	}
	return dests, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Method {
	case router.MethodConsistentHashing:
	case router.MethodRules:
		if c.RulesPath == "" {
			return fmt.Errorf("method %q requires a rules file", c.Method)
		}
	default:
		return fmt.Errorf("unknown method %q (expected one of %s)", c.Method, strings.Join(router.Methods(), ", "))
	}
	if c.ReplicationFactor < 1 {
		return fmt.Errorf("replication factor must be at least 1, got %d", c.ReplicationFactor)
	}
	if c.VNodes < 1 {
		return fmt.Errorf("vnodes must be at least 1, got %d", c.VNodes)
	}
	if c.Method == router.MethodRules && c.KeyFunction != "" {
		return fmt.Errorf("key function is only used by %q", router.MethodConsistentHashing)
	}
	return nil
}

// BindFlags registers flags overriding c's fields. Destinations are
// bound through a string flag parsed by ApplyFlags.
func (c *Config) BindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Method, "method", c.Method, "routing method: "+strings.Join(router.Methods(), " or "))
	flags.IntVar(&c.ReplicationFactor, "replication-factor", c.ReplicationFactor, "distinct servers each key is sent to")
	flags.IntVar(&c.VNodes, "vnodes", c.VNodes, "virtual nodes per destination instance")
	flags.String("destinations", "", "comma-separated host:port[:instance] list")
	flags.StringVar(&c.RulesPath, "rules", c.RulesPath, "YAML relay rules file")
	flags.StringVar(&c.KeyFunction, "keyfunc", c.KeyFunction, "key function spec, e.g. prefix:2")
	flags.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "lookup service listen address")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
}

// ApplyFlags parses flags that need conversion after flags.Parse.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	if !flags.Changed("destinations") {
		return nil
	}
	raw, err := flags.GetString("destinations")
	if err != nil {
		return err
	}
	dests, err := ParseDestinations(raw)
	if err != nil {
		return err
	}
	c.Destinations = dests
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
