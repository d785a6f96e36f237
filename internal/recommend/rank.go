// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package recommend

import (
	"slices"
	"sort"
)

// Rank orders predictions by score, highest first, and keeps the first topN.
// Equal scores keep ascending item order, the order predictions are made in.
func Rank(predictions PredictionMap, topN int) Recommendation {
	if topN <= 0 || len(predictions) == 0 {
		return Recommendation{}
	}

	items := make([]int64, 0, len(predictions))
	for item := range predictions {
		items = append(items, item)
	}
	slices.Sort(items)

	ranked := make(Recommendation, len(items))
	for i, item := range items {
		ranked[i] = ScoredItem{ItemID: item, Score: predictions[item]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
