// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package evaluate

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cragrec/internal/recommend"
	"github.com/tomtom215/cragrec/internal/recommend/algorithms"
)

// fakeStore is an in-memory test store.
type fakeStore struct {
	triples []recommend.RatingTriple
	path    string
	err     error
}

func (f *fakeStore) Ratings(_ context.Context, _ int) ([]recommend.RatingTriple, error) {
	return f.triples, f.err
}

func (f *fakeStore) UserIDs(_ context.Context) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]int64, len(f.triples))
	for i, t := range f.triples {
		ids[i] = t.UserID
	}
	return ids, nil
}

func (f *fakeStore) Path() string { return f.path }

// fakeTruth answers ground-truth lookups from a map.
type fakeTruth struct {
	scores  map[[2]int64]float64
	path    string
	failFor map[int64]bool
}

func (f *fakeTruth) Score(_ context.Context, user, item int64) (float64, bool, error) {
	if f.failFor[user] {
		return 0, false, errors.New("truth unavailable")
	}
	s, ok := f.scores[[2]int64{user, item}]
	return s, ok, nil
}

func (f *fakeTruth) Path() string { return f.path }

// fakeRecommender returns canned routes per user.
type fakeRecommender struct {
	name    string
	routes  map[int64][]int64
	failFor map[int64]bool
}

func (f *fakeRecommender) Name() string { return f.name }

func (f *fakeRecommender) Recommend(_ context.Context, user int64, _ recommend.RatingSource) (recommend.Recommendation, error) {
	if f.failFor[user] {
		return nil, errors.New("recommender exploded")
	}
	rec := recommend.Recommendation{}
	for i, id := range f.routes[user] {
		rec = append(rec, recommend.ScoredItem{ItemID: id, Score: float64(5 - i)})
	}
	return rec, nil
}

// scenarioStore is the three-user matrix where user 2 is user 1's close match.
func scenarioStore() *fakeStore {
	return &fakeStore{
		path: "test.duckdb",
		triples: []recommend.RatingTriple{
			{UserID: 1, ItemID: 1, Score: 5},
			{UserID: 1, ItemID: 2, Score: 3},
			{UserID: 2, ItemID: 1, Score: 5},
			{UserID: 2, ItemID: 2, Score: 3},
			{UserID: 2, ItemID: 3, Score: 4},
			{UserID: 3, ItemID: 1, Score: 1},
			{UserID: 3, ItemID: 2, Score: 1},
		},
	}
}

func newTestHarness(t *testing.T, test RatingStore, truth GroundTruth, cfg Config) *Harness {
	t.Helper()
	h, err := NewHarness(test, truth, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHarness() error = %v", err)
	}
	return h
}

func TestRun_PositiveGroundTruthHit(t *testing.T) {
	truth := &fakeTruth{path: "databasev2.db", scores: map[[2]int64]float64{{1, 3}: 4}}
	h := newTestHarness(t, scenarioStore(), truth, Config{GoodThreshold: 3, Seed: 1})

	engine, err := recommend.NewEngine(nil, algorithms.NewUserBasedCF(zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	report, err := h.Run(context.Background(), []Recommender{engine}, []int64{1})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	a, ok := report.Algorithm("usercf")
	if !ok {
		t.Fatalf("report has no usercf section: %+v", report.Algorithms)
	}
	want := Tally{Positive: 1}
	if a.Users[0].Tally != want {
		t.Errorf("user 1 tally = %+v, want %+v", a.Users[0].Tally, want)
	}
	if len(a.Users[0].Items) != 1 || a.Users[0].Items[0].ItemID != 3 {
		t.Errorf("items = %+v, want route 3 only", a.Users[0].Items)
	}
	if ts := a.Users[0].Items[0].TruthScore; ts == nil || *ts != 4 {
		t.Errorf("truth score = %v, want 4", ts)
	}
	if a.Precision != 1 || a.Coverage != 1 {
		t.Errorf("precision = %v coverage = %v, want 1 and 1", a.Precision, a.Coverage)
	}
}

func TestRun_ClassifiesEveryRoute(t *testing.T) {
	truth := &fakeTruth{scores: map[[2]int64]float64{
		{7, 10}: 5,
		{7, 11}: 1,
	}}
	rec := &fakeRecommender{name: "canned", routes: map[int64][]int64{7: {10, 11, 12}}}
	h := newTestHarness(t, &fakeStore{}, truth, Config{GoodThreshold: 3})

	report, err := h.Run(context.Background(), []Recommender{rec}, []int64{7})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := report.Algorithms[0].Users[0].Items
	want := []Outcome{Positive, Negative, Unknown}
	for i, o := range want {
		if got[i].Outcome != o {
			t.Errorf("route %d outcome = %v, want %v", got[i].ItemID, got[i].Outcome, o)
		}
	}
	if got[2].TruthScore != nil {
		t.Error("unknown route should carry no truth score")
	}
}

func TestRun_RecordsFailuresAndContinues(t *testing.T) {
	truth := &fakeTruth{
		scores:  map[[2]int64]float64{{1, 10}: 4, {3, 10}: 2},
		failFor: map[int64]bool{4: true},
	}
	rec := &fakeRecommender{
		name:    "canned",
		routes:  map[int64][]int64{1: {10}, 2: {10}, 3: {10}, 4: {10}},
		failFor: map[int64]bool{2: true},
	}
	h := newTestHarness(t, &fakeStore{}, truth, Config{GoodThreshold: 3, Workers: 4})

	users := []int64{1, 2, 3, 4, 1}
	report, err := h.Run(context.Background(), []Recommender{rec}, users)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	a := report.Algorithms[0]
	if len(a.Users) != len(users) {
		t.Fatalf("got %d user results, want %d", len(a.Users), len(users))
	}
	for i, u := range a.Users {
		if u.UserID != users[i] {
			t.Errorf("result %d is user %d, want %d", i, u.UserID, users[i])
		}
	}
	if a.Failures != 2 {
		t.Errorf("Failures = %d, want 2", a.Failures)
	}
	if !a.Users[1].Failed() || !strings.Contains(a.Users[1].Error, "recommender exploded") {
		t.Errorf("user 2 result = %+v, want a recorded recommender failure", a.Users[1])
	}
	if !a.Users[3].Failed() || !strings.Contains(a.Users[3].Error, "ground truth") {
		t.Errorf("user 4 result = %+v, want a recorded ground-truth failure", a.Users[3])
	}
	want := Tally{Positive: 2, Negative: 1}
	if a.Totals != want {
		t.Errorf("Totals = %+v, want %+v", a.Totals, want)
	}
	if report.SampleSize != 5 || report.RunID == "" {
		t.Errorf("report header = %+v", report)
	}
}

func TestRun_ComparesRecommenders(t *testing.T) {
	truth := &fakeTruth{scores: map[[2]int64]float64{{1, 10}: 4}}
	good := &fakeRecommender{name: "good", routes: map[int64][]int64{1: {10}}}
	blind := &fakeRecommender{name: "blind", routes: map[int64][]int64{1: {99}}}
	h := newTestHarness(t, &fakeStore{}, truth, Config{GoodThreshold: 3, Workers: 2})

	report, err := h.Run(context.Background(), []Recommender{good, blind}, []int64{1, 1})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	names := []string{report.Algorithms[0].Name, report.Algorithms[1].Name}
	if !slices.Equal(names, []string{"good", "blind"}) {
		t.Errorf("algorithm order = %v", names)
	}
	if report.Algorithms[0].Totals.Positive != 2 || report.Algorithms[1].Totals.Unknown != 2 {
		t.Errorf("totals = %+v / %+v", report.Algorithms[0].Totals, report.Algorithms[1].Totals)
	}
}

func TestRun_Validation(t *testing.T) {
	h := newTestHarness(t, &fakeStore{}, &fakeTruth{}, Config{})

	if _, err := h.Run(context.Background(), nil, []int64{1}); err == nil {
		t.Error("Run() without recommenders should fail")
	}

	a := &fakeRecommender{name: "same"}
	b := &fakeRecommender{name: "same"}
	if _, err := h.Run(context.Background(), []Recommender{a, b}, []int64{1}); err == nil {
		t.Error("Run() with duplicate names should fail")
	}
}

func TestRun_Cancelled(t *testing.T) {
	h := newTestHarness(t, &fakeStore{}, &fakeTruth{}, Config{})
	rec := &fakeRecommender{name: "canned", routes: map[int64][]int64{1: {10}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Run(ctx, []Recommender{rec}, []int64{1, 2, 3}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestNewHarness_RejectsSameStore(t *testing.T) {
	s := scenarioStore()

	type both struct {
		*fakeStore
		*fakeTruth
	}
	shared := &both{fakeStore: s, fakeTruth: &fakeTruth{}}
	if _, err := NewHarness(shared, shared, Config{}, zerolog.Nop()); !errors.Is(err, ErrSameStore) {
		t.Errorf("same handle: error = %v, want ErrSameStore", err)
	}

	truth := &fakeTruth{path: s.path}
	if _, err := NewHarness(s, truth, Config{}, zerolog.Nop()); !errors.Is(err, ErrSameStore) {
		t.Errorf("same path: error = %v, want ErrSameStore", err)
	}

	other := &fakeTruth{path: "databasev2.db"}
	if _, err := NewHarness(s, other, Config{}, zerolog.Nop()); err != nil {
		t.Errorf("distinct stores: error = %v", err)
	}
}

// mapTruth is a non-comparable GroundTruth.
type mapTruth map[[2]int64]float64

func (m mapTruth) Score(_ context.Context, user, item int64) (float64, bool, error) {
	s, ok := m[[2]int64{user, item}]
	return s, ok, nil
}

func TestNewHarness_NonComparableTruth(t *testing.T) {
	if _, err := NewHarness(scenarioStore(), mapTruth{}, Config{}, zerolog.Nop()); err != nil {
		t.Errorf("NewHarness() error = %v", err)
	}
}

func TestSample(t *testing.T) {
	s := scenarioStore()
	h1 := newTestHarness(t, s, &fakeTruth{}, Config{Seed: 42})
	h2 := newTestHarness(t, s, &fakeTruth{}, Config{Seed: 42})

	a, err := h1.Sample(context.Background(), 20)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	b, err := h2.Sample(context.Background(), 20)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}

	if len(a) != 20 {
		t.Fatalf("Sample() returned %d users, want 20", len(a))
	}
	if !slices.Equal(a, b) {
		t.Errorf("same seed gave different samples: %v vs %v", a, b)
	}
	for _, id := range a {
		if id < 1 || id > 3 {
			t.Errorf("sampled unknown user %d", id)
		}
	}
	if h1.Seed() != 42 {
		t.Errorf("Seed() = %d, want 42", h1.Seed())
	}
}

func TestSample_Errors(t *testing.T) {
	h := newTestHarness(t, &fakeStore{}, &fakeTruth{}, Config{Seed: 1})
	if _, err := h.Sample(context.Background(), 3); !errors.Is(err, ErrNoUsers) {
		t.Errorf("empty store: error = %v, want ErrNoUsers", err)
	}
	if _, err := h.Sample(context.Background(), 0); err == nil {
		t.Error("Sample(0) should fail")
	}

	boom := errors.New("disk on fire")
	broken := newTestHarness(t, &fakeStore{err: boom}, &fakeTruth{}, Config{Seed: 1})
	if _, err := broken.Sample(context.Background(), 3); !errors.Is(err, boom) {
		t.Errorf("store failure: error = %v, want wrapped store error", err)
	}
}

func TestNewHarness_ClockSeed(t *testing.T) {
	h := newTestHarness(t, &fakeStore{}, &fakeTruth{}, Config{})
	if h.Seed() == 0 {
		t.Error("zero seed should be replaced by a clock seed")
	}
}

func TestReport_Writers(t *testing.T) {
	truth := &fakeTruth{scores: map[[2]int64]float64{{1, 10}: 4}}
	rec := &fakeRecommender{
		name:    "canned",
		routes:  map[int64][]int64{1: {10, 11}},
		failFor: map[int64]bool{2: true},
	}
	h := newTestHarness(t, &fakeStore{}, truth, Config{GoodThreshold: 3, Seed: 9})

	report, err := h.Run(context.Background(), []Recommender{rec}, []int64{1, 2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var text bytes.Buffer
	if err := report.WriteText(&text); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	for _, want := range []string{
		"[canned]",
		"user 1: POSITIVE=1 NEGATIVE=0 UNKNOWN=1",
		"user 2: FAILED",
		"failures=1",
	} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("WriteText() missing %q in:\n%s", want, text.String())
		}
	}

	var js bytes.Buffer
	if err := report.WriteJSON(&js); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	for _, want := range []string{`"run_id"`, `"outcome": "POSITIVE"`, `"outcome": "UNKNOWN"`, `"failures": 1`} {
		if !strings.Contains(js.String(), want) {
			t.Errorf("WriteJSON() missing %q in:\n%s", want, js.String())
		}
	}
}
