// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package recommend

import (
	"math"
	"slices"
)

// MatrixOptions controls how rating triples become a RatingMatrix.
type MatrixOptions struct {
	// ZeroIsUnrated drops zero scores so that they read as "unrated".
	ZeroIsUnrated bool
}

// RatingMatrix is a sparse user by item score matrix.
//
// Only entries backed by a rating row are present. The matrix is immutable
// once built and may be read from several goroutines.
type RatingMatrix struct {
	rows  map[int64]map[int64]float64
	keys  map[int64][]int64 // per-user item IDs, ascending
	norms map[int64]float64
	users []int64
	items []int64
}

// BuildMatrix builds a RatingMatrix from rating triples. A later triple for
// the same (user, item) pair replaces an earlier one. Every observed item
// joins the item set even when its score was dropped as unrated.
//
//nolint:gocritic // opts is a small value type
func BuildMatrix(triples []RatingTriple, opts MatrixOptions) *RatingMatrix {
	rows := make(map[int64]map[int64]float64)
	itemSet := make(map[int64]struct{})

	for _, t := range triples {
		row, ok := rows[t.UserID]
		if !ok {
			row = make(map[int64]float64)
			rows[t.UserID] = row
		}
		itemSet[t.ItemID] = struct{}{}

		if opts.ZeroIsUnrated && t.Score == 0 {
			delete(row, t.ItemID)
			continue
		}
		row[t.ItemID] = t.Score
	}

	m := &RatingMatrix{
		rows:  rows,
		keys:  make(map[int64][]int64, len(rows)),
		norms: make(map[int64]float64, len(rows)),
		users: make([]int64, 0, len(rows)),
		items: make([]int64, 0, len(itemSet)),
	}

	for user, row := range rows {
		keys := make([]int64, 0, len(row))
		for item := range row {
			keys = append(keys, item)
		}
		slices.Sort(keys)

		var sq float64
		for _, item := range keys {
			sq += row[item] * row[item]
		}
		m.keys[user] = keys
		m.norms[user] = math.Sqrt(sq)
		m.users = append(m.users, user)
	}
	slices.Sort(m.users)

	for item := range itemSet {
		m.items = append(m.items, item)
	}
	slices.Sort(m.items)

	return m
}

// HasUser reports whether the user contributed at least one rating row.
func (m *RatingMatrix) HasUser(user int64) bool {
	_, ok := m.rows[user]
	return ok
}

// Score returns the user's score for item and whether it is rated.
func (m *RatingMatrix) Score(user, item int64) (float64, bool) {
	s, ok := m.rows[user][item]
	return s, ok
}

// Rated returns the items the user rated, in ascending order.
// The returned slice must not be modified.
func (m *RatingMatrix) Rated(user int64) []int64 {
	return m.keys[user]
}

// Norm returns the Euclidean norm of the user's rating vector, with
// unrated items counted as zero.
func (m *RatingMatrix) Norm(user int64) float64 {
	return m.norms[user]
}

// Users returns all user IDs in ascending order.
func (m *RatingMatrix) Users() []int64 {
	return m.users
}

// Items returns every observed item ID in ascending order.
func (m *RatingMatrix) Items() []int64 {
	return m.items
}

// NumRatings returns the number of present entries.
func (m *RatingMatrix) NumRatings() int {
	n := 0
	for _, keys := range m.keys {
		n += len(keys)
	}
	return n
}
