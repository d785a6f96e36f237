// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/cragrec/internal/validation"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks the configuration for values the rest of cragrec cannot run with.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateServer()
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("CRAGREC_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("CRAGREC_LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateStore rejects column mappings that would make the rating query ambiguous.
func (c *Config) validateStore() error {
	cols := map[string]string{}
	for name, col := range map[string]string{
		"user_column":  c.Store.UserColumn,
		"item_column":  c.Store.ItemColumn,
		"score_column": c.Store.ScoreColumn,
	} {
		key := strings.ToLower(col)
		if other, dup := cols[key]; dup {
			return fmt.Errorf("store.%s and store.%s both map to column %q", other, name, col)
		}
		cols[key] = name
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}
