// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

// Package algorithms implements the recommend.Algorithm strategies.
//
//   - UserBasedCF: user-based collaborative filtering with cosine similarity
//   - Popularity: mean-score baseline used to judge the collaborative filter
//
// Algorithms hold no per-request state; everything they need is in the
// RatingMatrix handed to Predict.
package algorithms

import (
	"context"
	"math"

	"github.com/tomtom215/cragrec/internal/recommend"
)

// cancelCheckInterval is how many loop iterations run between context checks.
const cancelCheckInterval = 256

// Cosine returns the cosine similarity between the rating vectors of users
// a and b over the full item dimension, unrated items counting as zero, and
// the number of items both rated. It returns NaN when either vector has zero
// norm. The result is exactly symmetric in a and b.
func Cosine(m *recommend.RatingMatrix, a, b int64) (sim float64, corated int) {
	ka, kb := m.Rated(a), m.Rated(b)

	var dot float64
	i, j := 0, 0
	for i < len(ka) && j < len(kb) {
		switch {
		case ka[i] < kb[j]:
			i++
		case ka[i] > kb[j]:
			j++
		default:
			sa, _ := m.Score(a, ka[i])
			sb, _ := m.Score(b, kb[j])
			dot += sa * sb
			corated++
			i++
			j++
		}
	}

	na, nb := m.Norm(a), m.Norm(b)
	if na == 0 || nb == 0 {
		return math.NaN(), corated
	}
	return dot / (na * nb), corated
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

var (
	_ recommend.Algorithm = (*UserBasedCF)(nil)
	_ recommend.Algorithm = (*Popularity)(nil)
)
