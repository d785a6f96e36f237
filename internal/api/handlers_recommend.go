// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cragrec/internal/logging"
	"github.com/tomtom215/cragrec/internal/recommend"
	"github.com/tomtom215/cragrec/internal/validation"
)

// recommendationParams are the validated query parameters of a request.
type recommendationParams struct {
	N         int     `json:"n" validate:"min=0,max=10000"`
	Threshold float64 `json:"threshold" validate:"gte=-1,lt=1"`
	Algorithm string  `json:"algorithm" validate:"required"`
}

// RecommendationResponse is the data payload of a recommendation request.
type RecommendationResponse struct {
	UserID    int64                    `json:"user_id"`
	Algorithm string                   `json:"algorithm"`
	N         int                      `json:"n"`
	Threshold float64                  `json:"threshold"`
	Count     int                      `json:"count"`
	Items     recommend.Recommendation `json:"items"`
}

// GetRecommendations handles GET /api/v1/recommendations/{userID}.
// An unknown user returns an empty list, not 404.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		rw.BadRequest("Invalid user ID")
		return
	}

	params, ok := h.parseParams(rw, r)
	if !ok {
		return
	}

	rec, ok := h.recommenders[params.Algorithm]
	if !ok {
		rw.ValidationError("Unknown algorithm", map[string]interface{}{
			"algorithm": params.Algorithm,
			"available": h.algorithmNames(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.defaults.RequestTimeout)
	defer cancel()

	items, err := rec.GetRecommendations(ctx, userID, h.store, params.N, params.Threshold)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendation timed out")
			return
		}
		rw.StoreError(err)
		return
	}
	if items == nil {
		items = recommend.Recommendation{}
	}

	logger := logging.Ctx(r.Context(), logging.Logger())
	logger.Debug().
		Int64("user_id", userID).
		Str("algorithm", params.Algorithm).
		Int("returned", len(items)).
		Msg("Recommendations served")

	rw.Success(RecommendationResponse{
		UserID:    userID,
		Algorithm: params.Algorithm,
		N:         params.N,
		Threshold: params.Threshold,
		Count:     len(items),
		Items:     items,
	})
}

// parseParams reads n, threshold and algorithm, falling back to the
// handler defaults. It writes the error response itself and returns false
// when the request is invalid.
func (h *Handler) parseParams(rw *ResponseWriter, r *http.Request) (recommendationParams, bool) {
	q := r.URL.Query()
	params := recommendationParams{
		N:         h.defaults.NRecommendations,
		Threshold: h.defaults.SimilarityThreshold,
		Algorithm: h.defaults.Algorithm,
	}

	if s := q.Get("n"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			rw.BadRequest("n must be an integer")
			return params, false
		}
		params.N = n
	}
	if s := q.Get("threshold"); s != "" {
		t, err := strconv.ParseFloat(s, 64)
		if err != nil {
			rw.BadRequest("threshold must be a number")
			return params, false
		}
		params.Threshold = t
	}
	if s := q.Get("algorithm"); s != "" {
		params.Algorithm = s
	}

	if verr := validation.ValidateStruct(params); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return params, false
	}
	return params, true
}
