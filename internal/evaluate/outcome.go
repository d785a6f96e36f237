// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package evaluate

import (
	"fmt"
)

// Outcome classifies one recommended route against ground truth.
type Outcome int

const (
	Unknown Outcome = iota
	Positive
	Negative
)

func (o Outcome) String() string {
	switch o {
	case Positive:
		return "POSITIVE"
	case Negative:
		return "NEGATIVE"
	case Unknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome by name in JSON reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name, so stored reports round-trip.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "POSITIVE":
		*o = Positive
	case "NEGATIVE":
		*o = Negative
	case "UNKNOWN":
		*o = Unknown
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Classify turns a ground-truth lookup into an Outcome. A score equal to
// good counts as positive.
func Classify(score float64, found bool, good float64) Outcome {
	switch {
	case !found:
		return Unknown
	case score >= good:
		return Positive
	default:
		return Negative
	}
}

// Tally counts outcomes.
type Tally struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Unknown  int `json:"unknown"`
}

// Add counts one outcome.
func (t *Tally) Add(o Outcome) {
	switch o {
	case Positive:
		t.Positive++
	case Negative:
		t.Negative++
	default:
		t.Unknown++
	}
}

// Merge adds other's counts into t.
func (t *Tally) Merge(other Tally) {
	t.Positive += other.Positive
	t.Negative += other.Negative
	t.Unknown += other.Unknown
}

// Total is the number of classified recommendations.
func (t Tally) Total() int {
	return t.Positive + t.Negative + t.Unknown
}

// Reviewed is the number of recommendations the ground truth had a score for.
func (t Tally) Reviewed() int {
	return t.Positive + t.Negative
}

// Precision is positive/(positive+negative), or 0 when nothing was reviewed.
func (t Tally) Precision() float64 {
	if t.Reviewed() == 0 {
		return 0
	}
	return float64(t.Positive) / float64(t.Reviewed())
}

// Coverage is reviewed/total, or 0 for an empty tally.
func (t Tally) Coverage() float64 {
	if t.Total() == 0 {
		return 0
	}
	return float64(t.Reviewed()) / float64(t.Total())
}

func (t Tally) String() string {
	return fmt.Sprintf("POSITIVE=%d NEGATIVE=%d UNKNOWN=%d", t.Positive, t.Negative, t.Unknown)
}
