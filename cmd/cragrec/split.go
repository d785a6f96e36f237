// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/cragrec/internal/logging"
	"github.com/tomtom215/cragrec/internal/store"
)

const splitUsage = "Usage: cragrec split [flags] source_store dest_store"

func runSplit(ctx context.Context, e *env, args []string) int {
	cfg, ok := e.config()
	if !ok {
		return exitError
	}

	fs := e.newFlagSet("split", splitUsage)
	drop := fs.Float64("drop", 0.2, "probability each review is left out of the destination")
	seed := fs.Int64("seed", 0, "random seed, 0 for time based")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(e.stderr, splitUsage)
		return exitError
	}
	if *drop < 0 || *drop > 1 {
		return e.fail(fmt.Errorf("-drop must be within [0, 1], got %g", *drop))
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	logger := logging.WithComponent("cli")
	src, err := openStore(ctx, "source", fs.Arg(0), cfg, logger)
	if err != nil {
		return e.fail(err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing source store")
		}
	}()

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // sampling, not security
	stats, err := store.Split(ctx, src, fs.Arg(1), *drop, rng)
	if err != nil {
		return e.fail(err)
	}

	fmt.Fprintf(e.stdout, "Wrote %s: kept %d of %d reviews (dropped %d, seed %d)\n",
		fs.Arg(1), stats.Kept, stats.Total, stats.Dropped, *seed)
	return exitOK
}
