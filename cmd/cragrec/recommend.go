// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cragrec/internal/logging"
	"github.com/tomtom215/cragrec/internal/recommend"
)

const recommendUsage = "Usage: cragrec recommend [flags] store user_id"

// recommendOutput is the -json form of a recommend run.
type recommendOutput struct {
	UserID    int64                  `json:"user_id"`
	Algorithm string                 `json:"algorithm"`
	Items     []recommend.ScoredItem `json:"items"`
}

func runRecommend(ctx context.Context, e *env, args []string) int {
	cfg, ok := e.config()
	if !ok {
		return exitError
	}

	fs := e.newFlagSet("recommend", recommendUsage)
	n := fs.Int("n", cfg.Recommend.NRecommendations, "maximum number of routes to recommend")
	threshold := fs.Float64("threshold", cfg.Recommend.SimilarityThreshold, "neighbours need similarity strictly above this")
	algorithm := fs.String("algorithm", "usercf", "recommender: usercf or popularity")
	asJSON := fs.Bool("json", false, "print JSON instead of text")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(e.stderr, recommendUsage)
		return exitError
	}
	userID, err := strconv.ParseInt(fs.Arg(1), 10, 64)
	if err != nil {
		fmt.Fprintln(e.stderr, recommendUsage)
		return exitError
	}

	logger := logging.WithComponent("cli")
	engines, err := newEngines(cfg, []string{*algorithm}, logger)
	if err != nil {
		return e.fail(err)
	}

	st, err := openStore(ctx, "store", fs.Arg(0), cfg, logger)
	if err != nil {
		return e.fail(err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing store")
		}
	}()

	recs, err := engines[0].GetRecommendations(ctx, userID, st, *n, *threshold)
	if err != nil {
		return e.fail(err)
	}

	if *asJSON {
		out := recommendOutput{UserID: userID, Algorithm: engines[0].Name(), Items: recs}
		if out.Items == nil {
			out.Items = recommend.Recommendation{}
		}
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return e.fail(err)
		}
		return exitOK
	}

	if err := printRecommendations(e.stdout, userID, recs); err != nil {
		return e.fail(err)
	}
	return exitOK
}

// printRecommendations writes recs in the plain text report format.
func printRecommendations(w io.Writer, userID int64, recs recommend.Recommendation) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintf(w, "No recommendations found for user %d\n", userID)
		return err
	}
	if _, err := fmt.Fprintf(w, "Top recommendations for user %d:\n", userID); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "Route %d: Predicted score %.2f\n", r.ItemID, r.Score); err != nil {
			return err
		}
	}
	return nil
}
