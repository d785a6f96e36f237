// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package recommend

import (
	"fmt"
	"math"
)

// Config holds the defaults an Engine applies when the caller does not
// pass explicit values.
type Config struct {
	// NRecommendations is the maximum number of items returned.
	NRecommendations int `json:"n_recommendations"`

	// SimilarityThreshold keeps neighbours whose similarity is strictly greater.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// MaxRatings caps the rating rows read per request. 0 disables the cap.
	MaxRatings int `json:"max_ratings"`

	// ZeroIsUnrated treats stored zero scores as unrated.
	ZeroIsUnrated bool `json:"zero_is_unrated"`
}

// DefaultConfig returns the defaults the route recommender has always used.
func DefaultConfig() *Config {
	return &Config{
		NRecommendations:    300,
		SimilarityThreshold: 0.3,
		MaxRatings:          5000,
		ZeroIsUnrated:       false,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.NRecommendations < 0 {
		return fmt.Errorf("n_recommendations must be non-negative, got %d", c.NRecommendations)
	}
	if err := ValidateThreshold(c.SimilarityThreshold); err != nil {
		return err
	}
	if c.MaxRatings < 0 {
		return fmt.Errorf("max_ratings must be non-negative, got %d", c.MaxRatings)
	}
	return nil
}

// ValidateThreshold rejects thresholds that no cosine similarity can exceed.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < -1 || threshold >= 1 {
		return fmt.Errorf("similarity_threshold must be in [-1, 1), got %f", threshold)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
