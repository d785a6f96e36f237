// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package config

import "time"

// Config is the complete cragrec configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Recommend RecommendConfig `koanf:"recommend"`
	Evaluate  EvaluateConfig  `koanf:"evaluate"`
	Server    ServerConfig    `koanf:"server"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// StoreConfig describes how review rows are read from a rating store.
type StoreConfig struct {
	// Driver selects the backend: auto, duckdb, sqlite, postgres.
	// auto picks from the path (postgres:// URL, .duckdb/.ddb file, otherwise SQLite).
	Driver string `koanf:"driver" validate:"oneof=auto duckdb sqlite postgres"`

	Table       string `koanf:"table" validate:"required,sqlident"`
	UserColumn  string `koanf:"user_column" validate:"required,sqlident"`
	ItemColumn  string `koanf:"item_column" validate:"required,sqlident"`
	ScoreColumn string `koanf:"score_column" validate:"required,sqlident"`

	// QueryTimeout bounds every individual store query.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker wrapped around store queries.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32 `koanf:"max_failures" validate:"min=1"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// RecommendConfig holds the collaborative filtering parameters.
type RecommendConfig struct {
	// NRecommendations is the maximum number of recommendations returned.
	NRecommendations int `koanf:"n_recommendations" validate:"min=0"`

	// SimilarityThreshold keeps neighbours whose similarity is strictly above it.
	SimilarityThreshold float64 `koanf:"similarity_threshold" validate:"gte=-1,lt=1"`

	// MaxRatings caps the number of rating rows read per request. 0 disables the cap.
	MaxRatings int `koanf:"max_ratings" validate:"min=0"`

	// ZeroIsUnrated drops stored zero scores when building the matrix.
	ZeroIsUnrated bool `koanf:"zero_is_unrated"`

	// PopularityMinRatings is how many ratings an item needs before the
	// popularity baseline will rank it.
	PopularityMinRatings int `koanf:"popularity_min_ratings" validate:"min=1"`
}

// EvaluateConfig holds evaluation harness settings.
type EvaluateConfig struct {
	// GroundTruthPath is the full review store used to judge recommendations.
	GroundTruthPath string `koanf:"ground_truth_path" validate:"required"`

	// GoodThreshold is the minimum ground-truth score counted as POSITIVE.
	GoodThreshold float64 `koanf:"good_threshold"`

	// Seed seeds user sampling. 0 seeds from the clock.
	Seed int64 `koanf:"seed"`

	// Workers is the number of users evaluated concurrently.
	Workers int `koanf:"workers" validate:"min=1,max=64"`

	// Algorithms lists the recommenders compared in one run.
	Algorithms []string `koanf:"algorithms" validate:"min=1,dive,oneof=usercf popularity"`

	// HistoryPath is a badger directory where run reports are kept. Empty disables history.
	HistoryPath string `koanf:"history_path"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// StorePath is the rating store the API recommends from.
	StorePath string `koanf:"store_path"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	// Empty allows same-origin requests only.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// ProbeInterval is how often the served store is pinged in the background.
	// 0 disables the probe.
	ProbeInterval time.Duration `koanf:"probe_interval" validate:"gte=0"`
}
