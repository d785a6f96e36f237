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
	"math/rand"
	"os"
)

// SplitStats summarises a Split run.
type SplitStats struct {
	Total   int `json:"total"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// Split copies src into a new DuckDB store at destPath, dropping each review
// independently with probability dropRate. The destination uses the same
// table and column names as src. On failure no destination file is left behind.
func Split(ctx context.Context, src *Store, destPath string, dropRate float64, rng *rand.Rand) (stats SplitStats, err error) {
	if dropRate < 0 || dropRate > 1 {
		return stats, fmt.Errorf("drop rate must be within [0, 1], got %g", dropRate)
	}
	if rng == nil {
		return stats, errors.New("split requires a random source")
	}
	if DetectDriver(destPath) != DriverDuckDB {
		return stats, &Error{Op: "split", Path: destPath, Err: errors.New("destination must be a .duckdb or .ddb file")}
	}
	if _, statErr := os.Stat(destPath); statErr == nil {
		return stats, &Error{Op: "split", Path: destPath, Err: ErrDestinationExists}
	}

	triples, err := src.Ratings(ctx, 0)
	if err != nil {
		return stats, err
	}

	db, err := sql.Open("duckdb", destPath)
	if err != nil {
		return stats, &Error{Op: "split", Path: destPath, Err: err}
	}
	defer func() {
		closeQuietly(db)
		if err != nil {
			_ = os.Remove(destPath)
			_ = os.Remove(destPath + ".wal")
		}
	}()

	o := &src.opts
	create := fmt.Sprintf("CREATE TABLE %s (%s BIGINT NOT NULL, %s BIGINT NOT NULL, %s DOUBLE NOT NULL)",
		o.Table, o.UserColumn, o.ItemColumn, o.ScoreColumn)
	if _, err = db.ExecContext(ctx, create); err != nil {
		return stats, &Error{Op: "split", Path: destPath, Err: fmt.Errorf("create table: %w", err)}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, &Error{Op: "split", Path: destPath, Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				src.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Split rollback failed")
			}
		}
	}()

	insert := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)",
		o.Table, o.UserColumn, o.ItemColumn, o.ScoreColumn)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return stats, &Error{Op: "split", Path: destPath, Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer closeQuietly(stmt)

	stats.Total = len(triples)
	for _, t := range triples {
		if rng.Float64() < dropRate {
			stats.Dropped++
			continue
		}
		if _, err = stmt.ExecContext(ctx, t.UserID, t.ItemID, t.Score); err != nil {
			return stats, &Error{Op: "split", Path: destPath, Err: fmt.Errorf("insert review: %w", err)}
		}
		stats.Kept++
	}

	if err = tx.Commit(); err != nil {
		return stats, &Error{Op: "split", Path: destPath, Err: fmt.Errorf("commit: %w", err)}
	}

	src.logger.Info().
		Str("dest", destPath).
		Int("total", stats.Total).
		Int("kept", stats.Kept).
		Int("dropped", stats.Dropped).
		Msg("Split complete")
	return stats, nil
}
