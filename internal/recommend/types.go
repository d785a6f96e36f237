// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package recommend

import "context"

// RatingTriple is one review row: a user's score for a route.
type RatingTriple struct {
	UserID int64   `json:"user_id"`
	ItemID int64   `json:"item_id"`
	Score  float64 `json:"score"`
}

// RatingSource is a read-only rating store.
type RatingSource interface {
	// Ratings returns at most limit rating rows. limit <= 0 means no cap.
	Ratings(ctx context.Context, limit int) ([]RatingTriple, error)
}

// SimilarityMap maps a neighbour's user ID to its similarity with the target user.
type SimilarityMap map[int64]float64

// PredictionMap maps an item ID to its predicted score for the target user.
type PredictionMap map[int64]float64

// ScoredItem is a recommended item with its predicted score.
type ScoredItem struct {
	ItemID int64   `json:"item_id"`
	Score  float64 `json:"predicted_score"`
}

// Recommendation is an ordered list of items, best first.
type Recommendation []ScoredItem

// ItemIDs returns the recommended item IDs in rank order.
func (r Recommendation) ItemIDs() []int64 {
	ids := make([]int64, len(r))
	for i, it := range r {
		ids[i] = it.ItemID
	}
	return ids
}

// Params carries the per-request tuning an Algorithm may use.
type Params struct {
	// SimilarityThreshold keeps neighbours whose similarity is strictly greater.
	SimilarityThreshold float64
}

// Algorithm predicts scores for items the target user has not rated.
//
// Predict is only called for users present in the matrix. It must not
// return items the target has rated, and must not mutate the matrix.
type Algorithm interface {
	Name() string
	Predict(ctx context.Context, target int64, m *RatingMatrix, p Params) (PredictionMap, error)
}
