// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cragrec/internal/logging"
	"github.com/tomtom215/cragrec/internal/metrics"
)

// Engine runs one Algorithm over a freshly loaded rating matrix per request.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config *Config
	algo   Algorithm
	logger zerolog.Logger
}

// NewEngine creates an engine for algo. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, algo Algorithm, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if algo == nil {
		return nil, fmt.Errorf("algorithm is required")
	}

	return &Engine{
		config: cfg.Clone(),
		algo:   algo,
		logger: logger.With().Str("component", "recommend").Str("algorithm", algo.Name()).Logger(),
	}, nil
}

// Name returns the name of the underlying algorithm.
func (e *Engine) Name() string {
	return e.algo.Name()
}

// Config returns a copy of the engine defaults.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Recommend returns recommendations for userID using the configured
// NRecommendations and SimilarityThreshold.
func (e *Engine) Recommend(ctx context.Context, userID int64, src RatingSource) (Recommendation, error) {
	return e.GetRecommendations(ctx, userID, src, e.config.NRecommendations, e.config.SimilarityThreshold)
}

// GetRecommendations reads every rating from src (up to MaxRatings), predicts
// scores for the routes userID has not rated and returns the best n.
//
// An unknown user or an empty neighbourhood yields an empty Recommendation
// and a nil error. Failures reading src are returned wrapped.
func (e *Engine) GetRecommendations(ctx context.Context, userID int64, src RatingSource, n int, threshold float64) (Recommendation, error) {
	start := time.Now()
	logger := logging.Ctx(ctx, e.logger).With().Int64("user_id", userID).Logger()

	if n < 0 {
		return nil, fmt.Errorf("n_recommendations must be non-negative, got %d", n)
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	triples, err := src.Ratings(ctx, e.config.MaxRatings)
	if err != nil {
		metrics.RecordRecommendation(e.algo.Name(), metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	m := BuildMatrix(triples, MatrixOptions{ZeroIsUnrated: e.config.ZeroIsUnrated})
	logger.Debug().
		Int("rows", len(triples)).
		Int("users", len(m.Users())).
		Int("items", len(m.Items())).
		Msg("rating matrix built")

	if !m.HasUser(userID) {
		metrics.RecordRecommendation(e.algo.Name(), metrics.OutcomeAbsentUser, time.Since(start))
		logger.Debug().Msg("user has no ratings")
		return Recommendation{}, nil
	}

	predictions, err := e.algo.Predict(ctx, userID, m, Params{SimilarityThreshold: threshold})
	if err != nil {
		metrics.RecordRecommendation(e.algo.Name(), metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("predict: %w", err)
	}

	ranked := Rank(predictions, n)

	outcome := metrics.OutcomeOK
	if len(ranked) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordRecommendation(e.algo.Name(), outcome, time.Since(start))

	logger.Debug().
		Int("predictions", len(predictions)).
		Int("returned", len(ranked)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations ranked")

	return ranked, nil
}
