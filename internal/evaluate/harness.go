// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cragrec/internal/config"
	"github.com/tomtom215/cragrec/internal/logging"
	"github.com/tomtom215/cragrec/internal/metrics"
	"github.com/tomtom215/cragrec/internal/recommend"
)

var (
	// ErrSameStore is returned when the test and ground-truth stores are the same store.
	ErrSameStore = errors.New("test store and ground-truth store must be different")

	// ErrNoUsers is returned by Sample when the test store has no reviews.
	ErrNoUsers = errors.New("test store has no users to sample")
)

// Recommender is anything that ranks routes for a user from a rating store.
// *recommend.Engine satisfies it.
type Recommender interface {
	Name() string
	Recommend(ctx context.Context, userID int64, src recommend.RatingSource) (recommend.Recommendation, error)
}

// RatingStore is the test store recommenders read from.
type RatingStore interface {
	recommend.RatingSource
	UserIDs(ctx context.Context) ([]int64, error)
}

// GroundTruth answers whether a user reviewed a route, and with what score.
type GroundTruth interface {
	Score(ctx context.Context, userID, itemID int64) (score float64, found bool, err error)
}

// Config tunes a Harness.
type Config struct {
	// GoodThreshold is the minimum ground-truth score counted as POSITIVE.
	GoodThreshold float64

	// Seed seeds sampling. 0 seeds from the clock; the seed used is reported.
	Seed int64

	// Workers bounds concurrent user evaluations. Values below 1 mean 1.
	Workers int
}

// ConfigFromSettings maps the evaluate section of the configuration onto Config.
func ConfigFromSettings(cfg *config.EvaluateConfig) Config {
	return Config{
		GoodThreshold: cfg.GoodThreshold,
		Seed:          cfg.Seed,
		Workers:       cfg.Workers,
	}
}

// Harness drives recommenders over sampled users and classifies their output.
type Harness struct {
	test   RatingStore
	truth  GroundTruth
	cfg    Config
	seed   int64
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHarness returns a Harness reading recommendations from test and judging
// them against truth.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHarness(test RatingStore, truth GroundTruth, cfg Config, logger zerolog.Logger) (*Harness, error) {
	if test == nil || truth == nil {
		return nil, errors.New("test store and ground-truth store are required")
	}
	if sameStore(test, truth) {
		return nil, ErrSameStore
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Harness{
		test:   test,
		truth:  truth,
		cfg:    cfg,
		seed:   seed,
		logger: logger.With().Str("component", "evaluate").Logger(),
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // sampling, not security
	}, nil
}

// sameStore reports whether a and b are the same handle, or two handles on
// the same path.
func sameStore(a RatingStore, b GroundTruth) bool {
	va, vb := any(a), any(b)
	ta := reflect.TypeOf(va)
	if ta == reflect.TypeOf(vb) && ta.Comparable() && va == vb {
		return true
	}

	type pather interface{ Path() string }
	pa, okA := va.(pather)
	pb, okB := vb.(pather)
	return okA && okB && pa.Path() != "" && pa.Path() == pb.Path()
}

// Seed returns the seed the sampler was started with.
func (h *Harness) Seed() int64 {
	return h.seed
}

// Sample draws n user IDs with replacement from the test store's review rows.
func (h *Harness) Sample(ctx context.Context, n int) ([]int64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}

	ids, err := h.test.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoUsers
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sample := make([]int64, n)
	for i := range sample {
		sample[i] = ids[h.rng.Intn(len(ids))]
	}
	return sample, nil
}

// Run evaluates every recommender for every user in users. Results keep the
// order of users. A failing user is recorded and the run continues; the run
// only fails when ctx is done.
func (h *Harness) Run(ctx context.Context, recommenders []Recommender, users []int64) (*Report, error) {
	if len(recommenders) == 0 {
		return nil, errors.New("at least one recommender is required")
	}
	seen := make(map[string]struct{}, len(recommenders))
	for _, r := range recommenders {
		if _, dup := seen[r.Name()]; dup {
			return nil, fmt.Errorf("duplicate recommender %q", r.Name())
		}
		seen[r.Name()] = struct{}{}
	}

	runID := logging.GenerateRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.Ctx(ctx, h.logger)

	report := &Report{
		RunID:         runID,
		StartedAt:     time.Now().UTC(),
		Seed:          h.seed,
		GoodThreshold: h.cfg.GoodThreshold,
		SampleSize:    len(users),
	}

	logger.Info().
		Int("users", len(users)).
		Int("recommenders", len(recommenders)).
		Int("workers", h.cfg.Workers).
		Msg("Evaluation started")

	results := make([][]UserResult, len(recommenders))
	for i := range results {
		results[i] = make([]UserResult, len(users))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.Workers)

	for ui, user := range users {
		for ri, rec := range recommenders {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res := h.evaluateUser(gctx, rec, user)
				if res.Err != nil && gctx.Err() != nil {
					return gctx.Err()
				}
				results[ri][ui] = res
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("Evaluation aborted")
		return nil, fmt.Errorf("evaluation aborted: %w", err)
	}

	for ri, rec := range recommenders {
		report.Algorithms = append(report.Algorithms, summarize(rec.Name(), results[ri]))
	}
	report.FinishedAt = time.Now().UTC()

	for i := range report.Algorithms {
		a := &report.Algorithms[i]
		logger.Info().
			Str("algorithm", a.Name).
			Int("positive", a.Totals.Positive).
			Int("negative", a.Totals.Negative).
			Int("unknown", a.Totals.Unknown).
			Int("failures", a.Failures).
			Float64("precision", a.Precision).
			Msg("Evaluation finished")
	}
	return report, nil
}

// evaluateUser asks rec for userID's routes and classifies each against
// ground truth. Any error fails the whole user.
func (h *Harness) evaluateUser(ctx context.Context, rec Recommender, userID int64) UserResult {
	res := UserResult{UserID: userID}
	logger := logging.Ctx(ctx, h.logger).With().
		Str("algorithm", rec.Name()).
		Int64("user_id", userID).
		Logger()

	items, err := rec.Recommend(ctx, userID, h.test)
	if err != nil {
		return h.fail(&logger, rec.Name(), res, fmt.Errorf("recommend: %w", err))
	}

	res.Items = make([]ItemOutcome, 0, len(items))
	for _, it := range items {
		score, found, err := h.truth.Score(ctx, userID, it.ItemID)
		if err != nil {
			return h.fail(&logger, rec.Name(), res, fmt.Errorf("ground truth for route %d: %w", it.ItemID, err))
		}

		outcome := Classify(score, found, h.cfg.GoodThreshold)
		out := ItemOutcome{ItemID: it.ItemID, PredictedScore: it.Score, Outcome: outcome}
		if found {
			s := score
			out.TruthScore = &s
			logger.Debug().
				Int64("route_id", it.ItemID).
				Float64("truth_score", score).
				Str("outcome", outcome.String()).
				Msg("Ground truth hit")
		}
		res.Items = append(res.Items, out)
		res.Tally.Add(outcome)
	}

	recordOutcomes(rec.Name(), res.Tally)

	logger.Debug().Stringer("tally", res.Tally).Msg("User evaluated")
	return res
}

func (h *Harness) fail(logger *zerolog.Logger, algorithm string, res UserResult, err error) UserResult {
	res.Items = nil
	res.Tally = Tally{}
	res.Err = err
	res.Error = err.Error()
	if !errors.Is(err, context.Canceled) {
		metrics.EvaluateUserFailures.WithLabelValues(algorithm).Inc()
		logger.Warn().Err(err).Msg("User evaluation failed")
	}
	return res
}

func recordOutcomes(algorithm string, t Tally) {
	counts := map[string]int{"positive": t.Positive, "negative": t.Negative, "unknown": t.Unknown}
	for outcome, n := range counts {
		if n > 0 {
			metrics.EvaluateOutcomes.WithLabelValues(algorithm, outcome).Add(float64(n))
		}
	}
}
