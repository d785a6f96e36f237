// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package algorithms

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cragrec/internal/recommend"
)

// Popularity ranks routes by their mean score across all users. It ignores
// the similarity threshold and gives every user the same ordering, minus the
// routes they already rated, which makes it a baseline for the evaluation
// harness rather than a personalised recommender.
type Popularity struct {
	minRatings int
	logger     zerolog.Logger
}

// PopularityConfig contains configuration for the popularity algorithm.
type PopularityConfig struct {
	// MinRatings is how many ratings an item needs before it is ranked.
	// Defaults to 2 so that a single enthusiastic review does not dominate.
	MinRatings int
}

// NewPopularity creates a new popularity algorithm.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPopularity(cfg PopularityConfig, logger zerolog.Logger) *Popularity {
	if cfg.MinRatings <= 0 {
		cfg.MinRatings = 2
	}
	return &Popularity{
		minRatings: cfg.MinRatings,
		logger:     logger.With().Str("component", "popularity").Logger(),
	}
}

// Name returns the algorithm identifier.
func (p *Popularity) Name() string {
	return "popularity"
}

// Predict returns the mean score of every sufficiently rated item target has not rated.
func (p *Popularity) Predict(ctx context.Context, target int64, m *recommend.RatingMatrix, _ recommend.Params) (recommend.PredictionMap, error) {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)

	for n, user := range m.Users() {
		if n%cancelCheckInterval == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		for _, item := range m.Rated(user) {
			score, _ := m.Score(user, item)
			sums[item] += score
			counts[item]++
		}
	}

	predictions := make(recommend.PredictionMap)
	for item, count := range counts {
		if count < p.minRatings {
			continue
		}
		if _, rated := m.Score(target, item); rated {
			continue
		}
		predictions[item] = sums[item] / float64(count)
	}

	p.logger.Debug().
		Int64("user_id", target).
		Int("candidates", len(predictions)).
		Msg("popularity scores computed")

	return predictions, nil
}
