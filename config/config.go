// Copyright (c) 2026 The POIP developers
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package config holds client configuration for the content gating stack:
// ledger gateway endpoint, pinning service credentials, custody defaults,
// and local data paths. Values come from a named network preset overlaid
// with POIP_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the environment variable prefix, e.g. POIP_LEDGER_URL.
const envPrefix = "poip"

// Config is the full client configuration.
type Config struct {
	// Network is the named preset: "localnet" or "devnet".
	Network string `envconfig:"NETWORK"`

	// LedgerURL is the ledger gateway JSON-RPC endpoint.
	LedgerURL string `envconfig:"LEDGER_URL"`

	// LedgerUser and LedgerPass are optional basic-auth credentials for
	// the ledger gateway.
	LedgerUser string `envconfig:"LEDGER_USER"`
	LedgerPass string `envconfig:"LEDGER_PASS"`

	// PinAPIURL is the pinning service API base URL.
	PinAPIURL string `envconfig:"PIN_API_URL"`

	// PinGatewayURL is the public gateway base URL for blob fetches.
	PinGatewayURL string `envconfig:"PIN_GATEWAY_URL"`

	// PinToken is the pinning service bearer token.
	PinToken string `envconfig:"PIN_TOKEN"`

	// CustodyURL is the default key custody service endpoint, used when
	// content metadata does not name one.
	CustodyURL string `envconfig:"CUSTODY_URL"`

	// DataDir is the root directory for the local blob cache and the
	// sealed key store.
	DataDir string `envconfig:"DATA_DIR"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// Network presets.
const (
	NetworkLocalnet = "localnet"
	NetworkDevnet   = "devnet"
)

// presets maps network names to their baseline configuration.
var presets = map[string]Config{
	NetworkLocalnet: {
		Network:       NetworkLocalnet,
		LedgerURL:     "http://127.0.0.1:8899",
		PinAPIURL:     "http://127.0.0.1:8200",
		PinGatewayURL: "http://127.0.0.1:8201/blobs",
		CustodyURL:    "http://127.0.0.1:8300",
		LogLevel:      "info",
	},
	NetworkDevnet: {
		Network:       NetworkDevnet,
		LedgerURL:     "https://ledger.devnet.poip.org",
		PinAPIURL:     "https://api.pinata.cloud",
		PinGatewayURL: "https://gateway.pinata.cloud/ipfs",
		CustodyURL:    "https://custody.devnet.poip.org",
		LogLevel:      "info",
	},
}

// DefaultConfig returns the localnet preset with the default data
// directory filled in.
func DefaultConfig() Config {
	cfg := presets[NetworkLocalnet]
	cfg.DataDir = defaultDataDir()
	return cfg
}

// defaultDataDir returns ~/.poip, or ".poip" when the home directory
// cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".poip"
	}
	return filepath.Join(home, ".poip")
}

// Preset returns the named network preset with the default data
// directory filled in.
func Preset(network string) (Config, error) {
	cfg, ok := presets[network]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
	}
	cfg.DataDir = defaultDataDir()
	return cfg, nil
}

// Load builds the effective configuration: the preset named by
// POIP_NETWORK (localnet when unset), overlaid with the remaining POIP_*
// environment variables, then validated.
func Load() (Config, error) {
	network := os.Getenv("POIP_NETWORK")
	if network == "" {
		network = NetworkLocalnet
	}

	cfg, err := Preset(network)
	if err != nil {
		return Config{}, err
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: process environment: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// CachePath returns the blob cache directory under DataDir.
func (c Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache")
}

// KeystorePath returns the sealed key database path under DataDir.
func (c Config) KeystorePath() string {
	return filepath.Join(c.DataDir, "keys.db")
}
