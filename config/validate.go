// Copyright (c) 2026 The POIP developers
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.Network != NetworkLocalnet && cfg.Network != NetworkDevnet {
		return ErrInvalidNetwork
	}

	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	for name, endpoint := range map[string]string{
		"ledger URL":      cfg.LedgerURL,
		"pin API URL":     cfg.PinAPIURL,
		"pin gateway URL": cfg.PinGatewayURL,
		"custody URL":     cfg.CustodyURL,
	} {
		if err := validateURL(endpoint); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidURL, name, err)
		}
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// validateURL checks that endpoint is an absolute http(s) URL.
func validateURL(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q not supported", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
