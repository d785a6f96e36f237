// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package evaluate

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
)

// Report is the result of one evaluation run.
type Report struct {
	RunID         string            `json:"run_id"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	Seed          int64             `json:"seed"`
	GoodThreshold float64           `json:"good_threshold"`
	SampleSize    int               `json:"sample_size"`
	Algorithms    []AlgorithmReport `json:"algorithms"`
}

// AlgorithmReport aggregates one recommender's results over the sample.
type AlgorithmReport struct {
	Name      string       `json:"name"`
	Totals    Tally        `json:"totals"`
	Precision float64      `json:"precision"`
	Coverage  float64      `json:"coverage"`
	Failures  int          `json:"failures"`
	Users     []UserResult `json:"users"`
}

// UserResult is one sampled user's evaluation. A user sampled twice
// appears twice.
type UserResult struct {
	UserID int64         `json:"user_id"`
	Tally  Tally         `json:"tally"`
	Items  []ItemOutcome `json:"items,omitempty"`
	Error  string        `json:"error,omitempty"`

	// Err is the failure behind Error. It is not persisted.
	Err error `json:"-"`
}

// Failed reports whether the user's evaluation failed.
func (u *UserResult) Failed() bool {
	return u.Error != ""
}

// ItemOutcome is one recommended route and how ground truth judged it.
type ItemOutcome struct {
	ItemID         int64    `json:"route_id"`
	PredictedScore float64  `json:"predicted_score"`
	Outcome        Outcome  `json:"outcome"`
	TruthScore     *float64 `json:"truth_score,omitempty"`
}

func summarize(name string, users []UserResult) AlgorithmReport {
	a := AlgorithmReport{Name: name, Users: users}
	for i := range users {
		if users[i].Failed() {
			a.Failures++
			continue
		}
		a.Totals.Merge(users[i].Tally)
	}
	a.Precision = a.Totals.Precision()
	a.Coverage = a.Totals.Coverage()
	return a
}

// Algorithm returns the report for the named recommender.
func (r *Report) Algorithm(name string) (*AlgorithmReport, bool) {
	for i := range r.Algorithms {
		if r.Algorithms[i].Name == name {
			return &r.Algorithms[i], true
		}
	}
	return nil, false
}

// WriteText prints one line per sampled user followed by per-algorithm totals.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Evaluation run %s (seed %d, good >= %g, %d users)\n",
		r.RunID, r.Seed, r.GoodThreshold, r.SampleSize); err != nil {
		return err
	}

	for i := range r.Algorithms {
		a := &r.Algorithms[i]
		if _, err := fmt.Fprintf(w, "\n[%s]\n", a.Name); err != nil {
			return err
		}
		for j := range a.Users {
			u := &a.Users[j]
			var err error
			if u.Failed() {
				_, err = fmt.Fprintf(w, "user %d: FAILED %s\n", u.UserID, u.Error)
			} else {
				_, err = fmt.Fprintf(w, "user %d: %s\n", u.UserID, u.Tally)
			}
			if err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "total: %s failures=%d precision=%.3f coverage=%.3f\n",
			a.Totals, a.Failures, a.Precision, a.Coverage); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
