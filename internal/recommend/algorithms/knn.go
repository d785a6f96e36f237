// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package algorithms

import (
	"context"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cragrec/internal/metrics"
	"github.com/tomtom215/cragrec/internal/recommend"
)

// SimilarityStats describes one similarity pass.
type SimilarityStats struct {
	// Compared is the number of other users examined.
	Compared int

	// NoOverlap counts users skipped for sharing no rated item with the target.
	NoOverlap int

	// Degenerate counts users skipped because a similarity was NaN.
	Degenerate int

	// BelowThreshold counts users whose similarity did not exceed the threshold.
	BelowThreshold int
}

// UserBasedCF implements user-based collaborative filtering.
//
// For a target user u and an item i that u has not rated:
//
//	score(u, i) = sum_{v in N(u), v rated i} sim(u, v) * r(v, i)
//	            / sum_{v in N(u), v rated i} sim(u, v)
//
// where N(u) holds every user sharing at least one rated item with u whose
// cosine similarity is strictly above the threshold. Items whose
// denominator is not positive are left out.
type UserBasedCF struct {
	logger zerolog.Logger
}

// NewUserBasedCF creates a new user-based CF algorithm.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewUserBasedCF(logger zerolog.Logger) *UserBasedCF {
	return &UserBasedCF{
		logger: logger.With().Str("component", "usercf").Logger(),
	}
}

// Name returns the algorithm identifier.
func (u *UserBasedCF) Name() string {
	return "usercf"
}

// Predict computes the neighbourhood of target and the weighted average
// score of every item target has not rated.
func (u *UserBasedCF) Predict(ctx context.Context, target int64, m *recommend.RatingMatrix, p recommend.Params) (recommend.PredictionMap, error) {
	sims, stats, err := u.similarities(ctx, target, m, p.SimilarityThreshold)
	if err != nil {
		return nil, err
	}

	metrics.RecommendNeighbors.Observe(float64(len(sims)))
	if stats.Degenerate > 0 {
		metrics.RecommendDegenerateSimilarities.Add(float64(stats.Degenerate))
	}
	u.logger.Debug().
		Int64("user_id", target).
		Int("neighbors", len(sims)).
		Int("compared", stats.Compared).
		Int("no_overlap", stats.NoOverlap).
		Int("degenerate", stats.Degenerate).
		Int("below_threshold", stats.BelowThreshold).
		Float64("threshold", p.SimilarityThreshold).
		Msg("similarity pass complete")

	if len(sims) == 0 {
		return recommend.PredictionMap{}, nil
	}
	return predict(ctx, target, m, sims)
}

// Similarity returns the neighbours of target whose cosine similarity is
// strictly greater than threshold. Users sharing no rated item with target,
// and users whose similarity is NaN, are left out.
func Similarity(target int64, m *recommend.RatingMatrix, threshold float64) recommend.SimilarityMap {
	sims, _, _ := (&UserBasedCF{logger: zerolog.Nop()}).similarities(context.Background(), target, m, threshold)
	return sims
}

// Predict returns the similarity-weighted average score of every item target
// has not rated, using only the neighbours in sims.
func Predict(target int64, m *recommend.RatingMatrix, sims recommend.SimilarityMap) recommend.PredictionMap {
	p, _ := predict(context.Background(), target, m, sims)
	return p
}

func (u *UserBasedCF) similarities(ctx context.Context, target int64, m *recommend.RatingMatrix, threshold float64) (recommend.SimilarityMap, SimilarityStats, error) {
	sims := make(recommend.SimilarityMap)
	var stats SimilarityStats

	if !m.HasUser(target) {
		return sims, stats, nil
	}

	for n, other := range m.Users() {
		if n%cancelCheckInterval == 0 && ContextCancelled(ctx) {
			return nil, stats, ctx.Err()
		}
		if other == target {
			continue
		}
		stats.Compared++

		sim, corated := Cosine(m, target, other)
		switch {
		case corated == 0:
			stats.NoOverlap++
		case math.IsNaN(sim):
			stats.Degenerate++
			u.logger.Debug().
				Int64("user_id", target).
				Int64("other_user_id", other).
				Msg("degenerate similarity skipped")
		case sim > threshold:
			sims[other] = sim
		default:
			stats.BelowThreshold++
		}
	}
	return sims, stats, nil
}

func predict(ctx context.Context, target int64, m *recommend.RatingMatrix, sims recommend.SimilarityMap) (recommend.PredictionMap, error) {
	predictions := make(recommend.PredictionMap)
	if len(sims) == 0 {
		return predictions, nil
	}

	// fixed neighbour order keeps floating point sums reproducible
	neighbors := make([]int64, 0, len(sims))
	for id := range sims {
		neighbors = append(neighbors, id)
	}
	slices.Sort(neighbors)

	for n, item := range m.Items() {
		if n%cancelCheckInterval == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		if _, rated := m.Score(target, item); rated {
			continue
		}

		var weightedSum, simSum float64
		for _, nb := range neighbors {
			score, ok := m.Score(nb, item)
			if !ok {
				continue
			}
			sim := sims[nb]
			weightedSum += sim * score
			simSum += sim
		}
		if simSum > 0 {
			predictions[item] = weightedSum / simSum
		}
	}
	return predictions, nil
}
