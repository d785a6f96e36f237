// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/cragrec/internal/recommend"
)

// Recommender ranks routes for a user with explicit n and threshold.
// *recommend.Engine satisfies it.
type Recommender interface {
	Name() string
	GetRecommendations(ctx context.Context, userID int64, src recommend.RatingSource, n int, threshold float64) (recommend.Recommendation, error)
}

// RatingStore is the store the API recommends from.
type RatingStore interface {
	recommend.RatingSource
	Ping(ctx context.Context) error
}

// Defaults are the recommendation parameters used when a request omits them.
type Defaults struct {
	NRecommendations    int
	SimilarityThreshold float64
	Algorithm           string
	RequestTimeout      time.Duration
}

// Handler serves the API endpoints.
type Handler struct {
	store        RatingStore
	recommenders map[string]Recommender
	defaults     Defaults
	startTime    time.Time
}

// NewHandler creates a handler. defaults.Algorithm must name one of recommenders.
func NewHandler(store RatingStore, recommenders []Recommender, defaults Defaults) (*Handler, error) {
	if store == nil {
		return nil, errors.New("rating store is required")
	}
	if len(recommenders) == 0 {
		return nil, errors.New("at least one recommender is required")
	}

	byName := make(map[string]Recommender, len(recommenders))
	for _, r := range recommenders {
		byName[r.Name()] = r
	}
	if defaults.Algorithm == "" {
		defaults.Algorithm = recommenders[0].Name()
	}
	if _, ok := byName[defaults.Algorithm]; !ok {
		return nil, fmt.Errorf("default algorithm %q is not registered", defaults.Algorithm)
	}
	if defaults.RequestTimeout <= 0 {
		defaults.RequestTimeout = 30 * time.Second
	}

	return &Handler{
		store:        store,
		recommenders: byName,
		defaults:     defaults,
		startTime:    time.Now(),
	}, nil
}

func (h *Handler) algorithmNames() []string {
	names := make([]string, 0, len(h.recommenders))
	for name := range h.recommenders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
