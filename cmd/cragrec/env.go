// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cragrec/internal/config"
	"github.com/tomtom215/cragrec/internal/logging"
	"github.com/tomtom215/cragrec/internal/recommend"
	"github.com/tomtom215/cragrec/internal/recommend/algorithms"
	"github.com/tomtom215/cragrec/internal/store"
)

// env carries the process streams and configuration loader into a subcommand.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (*config.Config, error)
}

// loadConfig loads configuration and points the global logger at stderr.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

// config loads configuration, reporting failures on stderr.
func (e *env) config() (*config.Config, bool) {
	cfg, err := e.loadConfig()
	if err != nil {
		fmt.Fprintf(e.stderr, "cragrec: %v\n", err)
		return nil, false
	}
	return cfg, true
}

// fail reports err on stderr and returns the error exit code.
func (e *env) fail(err error) int {
	fmt.Fprintf(e.stderr, "cragrec: %v\n", err)
	return exitError
}

// newFlagSet returns a flag set that writes its own errors and help to stderr.
func (e *env) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintln(e.stderr, usage)
		fs.PrintDefaults()
	}
	return fs
}

// openStore opens path read-only using the store section of cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openStore(ctx context.Context, name, path string, cfg *config.Config, logger zerolog.Logger) (*store.Store, error) {
	return store.Open(ctx, path, store.OptionsFromConfig(name, &cfg.Store, logger))
}

// engineConfig maps the recommend section of cfg onto engine defaults.
func engineConfig(cfg *config.Config) *recommend.Config {
	return &recommend.Config{
		NRecommendations:    cfg.Recommend.NRecommendations,
		SimilarityThreshold: cfg.Recommend.SimilarityThreshold,
		MaxRatings:          cfg.Recommend.MaxRatings,
		ZeroIsUnrated:       cfg.Recommend.ZeroIsUnrated,
	}
}

// newEngines builds one engine per algorithm name, in order.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newEngines(cfg *config.Config, names []string, logger zerolog.Logger) ([]*recommend.Engine, error) {
	ecfg := engineConfig(cfg)
	engines := make([]*recommend.Engine, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)

		var algo recommend.Algorithm
		switch name {
		case "usercf":
			algo = algorithms.NewUserBasedCF(logger)
		case "popularity":
			algo = algorithms.NewPopularity(algorithms.PopularityConfig{
				MinRatings: cfg.Recommend.PopularityMinRatings,
			}, logger)
		default:
			return nil, fmt.Errorf("unknown algorithm %q (want usercf or popularity)", name)
		}

		engine, err := recommend.NewEngine(ecfg, algo, logger)
		if err != nil {
			return nil, fmt.Errorf("algorithm %s: %w", name, err)
		}
		engines = append(engines, engine)
	}
	return engines, nil
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
