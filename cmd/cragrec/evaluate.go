// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tomtom215/cragrec/internal/config"
	"github.com/tomtom215/cragrec/internal/evaluate"
	"github.com/tomtom215/cragrec/internal/logging"
)

const evaluateUsage = "Usage: cragrec evaluate [flags] test_store num_tests"

// evaluateArgs are the parsed evaluate command line.
type evaluateArgs struct {
	testPath   string
	numTests   int
	truthPath  string
	algorithms []string
	history    string
	asJSON     bool
	settings   evaluate.Config
}

func runEvaluate(ctx context.Context, e *env, args []string) int {
	cfg, ok := e.config()
	if !ok {
		return exitError
	}

	fs := e.newFlagSet("evaluate", evaluateUsage)
	truth := fs.String("truth", cfg.Evaluate.GroundTruthPath, "ground-truth store holding every review")
	good := fs.Float64("good", cfg.Evaluate.GoodThreshold, "ground-truth score counted as POSITIVE")
	seed := fs.Int64("seed", cfg.Evaluate.Seed, "sampling seed, 0 for time based")
	workers := fs.Int("workers", cfg.Evaluate.Workers, "users evaluated concurrently")
	algos := fs.String("algorithms", strings.Join(cfg.Evaluate.Algorithms, ","), "comma separated recommenders to compare")
	history := fs.String("history", cfg.Evaluate.HistoryPath, "badger directory the report is saved to, empty to skip")
	asJSON := fs.Bool("json", false, "print the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	ea, err := parseEvaluateArgs(fs.Args())
	if err != nil {
		fmt.Fprintln(e.stderr, evaluateUsage)
		return exitError
	}
	ea.truthPath = *truth
	ea.algorithms = splitList(*algos)
	ea.history = *history
	ea.asJSON = *asJSON
	ea.settings = evaluate.Config{GoodThreshold: *good, Seed: *seed, Workers: *workers}

	if len(ea.algorithms) == 0 {
		return e.fail(fmt.Errorf("-algorithms must name at least one recommender"))
	}
	if *workers < 1 {
		return e.fail(fmt.Errorf("-workers must be at least 1, got %d", *workers))
	}

	report, err := evaluateRun(ctx, cfg, &ea)
	if err != nil {
		return e.fail(err)
	}

	if ea.asJSON {
		err = report.WriteJSON(e.stdout)
	} else {
		err = report.WriteText(e.stdout)
	}
	if err != nil {
		return e.fail(err)
	}
	return exitOK
}

// parseEvaluateArgs reads the positional test_store and num_tests arguments.
func parseEvaluateArgs(pos []string) (evaluateArgs, error) {
	if len(pos) != 2 {
		return evaluateArgs{}, fmt.Errorf("expected 2 arguments, got %d", len(pos))
	}
	n, err := strconv.Atoi(pos[1])
	if err != nil {
		return evaluateArgs{}, fmt.Errorf("num_tests: %w", err)
	}
	if n < 1 {
		return evaluateArgs{}, fmt.Errorf("num_tests must be positive, got %d", n)
	}
	return evaluateArgs{testPath: pos[0], numTests: n}, nil
}

// evaluateRun opens both stores, samples users from the test store and
// evaluates every requested recommender over that one sample.
func evaluateRun(ctx context.Context, cfg *config.Config, ea *evaluateArgs) (*evaluate.Report, error) {
	logger := logging.WithComponent("cli")

	if filepath.Clean(ea.testPath) == filepath.Clean(ea.truthPath) {
		return nil, evaluate.ErrSameStore
	}

	engines, err := newEngines(cfg, ea.algorithms, logger)
	if err != nil {
		return nil, err
	}
	recs := make([]evaluate.Recommender, len(engines))
	for i, eng := range engines {
		recs[i] = eng
	}

	test, err := openStore(ctx, "test", ea.testPath, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open test store: %w", err)
	}
	defer func() {
		if err := test.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing test store")
		}
	}()

	truth, err := openStore(ctx, "truth", ea.truthPath, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open ground-truth store: %w", err)
	}
	defer func() {
		if err := truth.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing ground-truth store")
		}
	}()

	harness, err := evaluate.NewHarness(test, truth, ea.settings, logging.Logger())
	if err != nil {
		return nil, err
	}
	users, err := harness.Sample(ctx, ea.numTests)
	if err != nil {
		return nil, err
	}
	report, err := harness.Run(ctx, recs, users)
	if err != nil {
		return nil, err
	}

	if ea.history != "" {
		if err := saveReport(ctx, ea.history, report); err != nil {
			// The report is still printed; only persistence failed.
			logger.Error().Err(err).Str("history", ea.history).Msg("Failed to save evaluation report")
		}
	}
	return report, nil
}

func saveReport(ctx context.Context, dir string, report *evaluate.Report) error {
	h, err := evaluate.OpenHistory(dir)
	if err != nil {
		return err
	}
	if err := h.Save(ctx, report); err != nil {
		_ = h.Close()
		return err
	}
	return h.Close()
}
