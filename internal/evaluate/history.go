// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package evaluate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	reportKeyPrefix = "report:"
	runKeyPrefix    = "run:"
)

// ErrReportNotFound is returned by History.Get for an unknown run ID.
var ErrReportNotFound = errors.New("evaluation report not found")

// History keeps evaluation reports in BadgerDB.
type History struct {
	db *badger.DB
}

// OpenHistory opens (or creates) a history database in dir.
func OpenHistory(dir string) (*History, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return &History{db: db}, nil
}

// NewHistory wraps an already opened badger database.
func NewHistory(db *badger.DB) *History {
	return &History{db: db}
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// reportKey orders reports by start time so iteration is chronological.
func reportKey(r *Report) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", reportKeyPrefix, r.StartedAt.UnixNano(), r.RunID))
}

// Save stores a report under its run ID.
func (h *History) Save(_ context.Context, r *Report) error {
	if r.RunID == "" {
		return errors.New("report has no run ID")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return h.db.Update(func(txn *badger.Txn) error {
		key := reportKey(r)
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set report: %w", err)
		}
		if err := txn.Set([]byte(runKeyPrefix+r.RunID), key); err != nil {
			return fmt.Errorf("set run index: %w", err)
		}
		return nil
	})
}

// Get returns the report saved under runID.
func (h *History) Get(_ context.Context, runID string) (*Report, error) {
	var report Report

	err := h.db.View(func(txn *badger.Txn) error {
		idx, err := txn.Get([]byte(runKeyPrefix + runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return fmt.Errorf("get run index: %w", err)
		}
		key, err := idx.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return fmt.Errorf("get report: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns up to limit reports, newest first. limit <= 0 returns all.
func (h *History) List(_ context.Context, limit int) ([]*Report, error) {
	var reports []*Report

	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(reportKeyPrefix)
		seek := append([]byte(reportKeyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(reports) >= limit {
				break
			}
			var r Report
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("decode report %s: %w", it.Item().Key(), err)
			}
			reports = append(reports, &r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
