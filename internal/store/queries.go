// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/cragrec/internal/recommend"
)

// Ratings returns review rows in the store's natural order. A positive limit
// caps the number of rows read; zero or less reads every row. The cap is
// applied without ordering, so which rows survive it is backend-defined.
func (s *Store) Ratings(ctx context.Context, limit int) ([]recommend.RatingTriple, error) {
	query := s.q.ratings
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	var out []recommend.RatingTriple
	err := s.run(ctx, "ratings", func(ctx context.Context) (int, error) {
		out = out[:0]
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return 0, err
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var (
				user, item sql.NullInt64
				score      sql.NullFloat64
			)
			if err := rows.Scan(&user, &item, &score); err != nil {
				return len(out), err
			}
			if !user.Valid || !item.Valid || !score.Valid {
				return len(out), fmt.Errorf("%w: row %d has a NULL column", ErrMalformedRow, len(out)+1)
			}
			out = append(out, recommend.RatingTriple{
				UserID: user.Int64,
				ItemID: item.Int64,
				Score:  score.Float64,
			})
		}
		return len(out), rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []recommend.RatingTriple{}
	}
	return out, nil
}

// UserIDs returns the user id of every review row, one entry per row, so
// prolific reviewers appear once per review.
func (s *Store) UserIDs(ctx context.Context) ([]int64, error) {
	var out []int64
	err := s.run(ctx, "user_ids", func(ctx context.Context) (int, error) {
		out = out[:0]
		rows, err := s.db.QueryContext(ctx, s.q.userIDs)
		if err != nil {
			return 0, err
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var user sql.NullInt64
			if err := rows.Scan(&user); err != nil {
				return len(out), err
			}
			if !user.Valid {
				return len(out), fmt.Errorf("%w: row %d has a NULL user id", ErrMalformedRow, len(out)+1)
			}
			out = append(out, user.Int64)
		}
		return len(out), rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []int64{}
	}
	return out, nil
}

// Score looks up the score userID gave itemID. found is false when no such
// review exists; err is reserved for store failures.
func (s *Store) Score(ctx context.Context, userID, itemID int64) (score float64, found bool, err error) {
	err = s.run(ctx, "score", func(ctx context.Context) (int, error) {
		var v sql.NullFloat64
		scanErr := s.db.QueryRowContext(ctx, s.q.score, userID, itemID).Scan(&v)
		switch {
		case errors.Is(scanErr, sql.ErrNoRows):
			return 0, nil
		case scanErr != nil:
			return 0, scanErr
		case !v.Valid:
			return 1, fmt.Errorf("%w: NULL score for user %d item %d", ErrMalformedRow, userID, itemID)
		}
		score, found = v.Float64, true
		return 1, nil
	})
	if err != nil {
		return 0, false, err
	}
	return score, found, nil
}
