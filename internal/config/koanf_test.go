// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a missing file and runs from an empty
// directory so no stray cragrec.yaml is picked up.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Recommend.NRecommendations != 300 {
		t.Errorf("Recommend.NRecommendations = %d, want 300", cfg.Recommend.NRecommendations)
	}
	if cfg.Recommend.SimilarityThreshold != 0.3 {
		t.Errorf("Recommend.SimilarityThreshold = %v, want 0.3", cfg.Recommend.SimilarityThreshold)
	}
	if cfg.Recommend.MaxRatings != 5000 {
		t.Errorf("Recommend.MaxRatings = %d, want 5000", cfg.Recommend.MaxRatings)
	}
	if cfg.Recommend.ZeroIsUnrated {
		t.Error("Recommend.ZeroIsUnrated should be false by default")
	}
	if cfg.Evaluate.GoodThreshold != 3 {
		t.Errorf("Evaluate.GoodThreshold = %v, want 3", cfg.Evaluate.GoodThreshold)
	}
	if cfg.Evaluate.GroundTruthPath != "databasev2.db" {
		t.Errorf("Evaluate.GroundTruthPath = %q, want databasev2.db", cfg.Evaluate.GroundTruthPath)
	}
	if cfg.Store.Table != "reviews" || cfg.Store.ItemColumn != "route_id" {
		t.Errorf("Store = %+v, want reviews/route_id", cfg.Store)
	}
	if cfg.Store.QueryTimeout != 30*time.Second {
		t.Errorf("Store.QueryTimeout = %v, want 30s", cfg.Store.QueryTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v, want nil", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"CRAGREC_LOG_LEVEL", "logging.level"},
		{"CRAGREC_SIMILARITY_THRESHOLD", "recommend.similarity_threshold"},
		{"CRAGREC_STORE_BREAKER_TIMEOUT", "store.breaker.timeout"},
		{"CRAGREC_EVAL_ALGORITHMS", "evaluate.algorithms"},
		{"cragrec_http_port", "server.port"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8470 {
		t.Errorf("Server.Port = %d, want 8470", cfg.Server.Port)
	}
	if len(cfg.Evaluate.Algorithms) != 1 || cfg.Evaluate.Algorithms[0] != "usercf" {
		t.Errorf("Evaluate.Algorithms = %v, want [usercf]", cfg.Evaluate.Algorithms)
	}
}

func TestLoadEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("CRAGREC_LOG_LEVEL", "debug")
	t.Setenv("CRAGREC_N_RECOMMENDATIONS", "25")
	t.Setenv("CRAGREC_SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("CRAGREC_ZERO_IS_UNRATED", "true")
	t.Setenv("CRAGREC_EVAL_ALGORITHMS", "usercf, popularity")
	t.Setenv("CRAGREC_STORE_QUERY_TIMEOUT", "5s")
	t.Setenv("CRAGREC_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CRAGREC_PROBE_INTERVAL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.NRecommendations != 25 {
		t.Errorf("Recommend.NRecommendations = %d, want 25", cfg.Recommend.NRecommendations)
	}
	if cfg.Recommend.SimilarityThreshold != 0.5 {
		t.Errorf("Recommend.SimilarityThreshold = %v, want 0.5", cfg.Recommend.SimilarityThreshold)
	}
	if !cfg.Recommend.ZeroIsUnrated {
		t.Error("Recommend.ZeroIsUnrated = false, want true")
	}
	if got := cfg.Evaluate.Algorithms; len(got) != 2 || got[0] != "usercf" || got[1] != "popularity" {
		t.Errorf("Evaluate.Algorithms = %v, want [usercf popularity]", got)
	}
	if cfg.Store.QueryTimeout != 5*time.Second {
		t.Errorf("Store.QueryTimeout = %v, want 5s", cfg.Store.QueryTimeout)
	}
	if got := cfg.Server.CORSAllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("Server.CORSAllowedOrigins = %v, want two trimmed origins", got)
	}
	if cfg.Server.ProbeInterval != 0 {
		t.Errorf("Server.ProbeInterval = %v, want 0 (disabled)", cfg.Server.ProbeInterval)
	}

	// unset values keep their defaults
	if cfg.Recommend.MaxRatings != 5000 {
		t.Errorf("Recommend.MaxRatings = %d, want 5000 (default)", cfg.Recommend.MaxRatings)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	isolate(t)

	content := `
store:
  table: ascents
  score_column: stars
recommend:
  similarity_threshold: 0.1
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "cragrec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("CRAGREC_LOG_LEVEL", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Table != "ascents" {
		t.Errorf("Store.Table = %q, want ascents (from file)", cfg.Store.Table)
	}
	if cfg.Store.ScoreColumn != "stars" {
		t.Errorf("Store.ScoreColumn = %q, want stars (from file)", cfg.Store.ScoreColumn)
	}
	if cfg.Recommend.SimilarityThreshold != 0.1 {
		t.Errorf("Recommend.SimilarityThreshold = %v, want 0.1 (from file)", cfg.Recommend.SimilarityThreshold)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env override)", cfg.Logging.Level)
	}
	if cfg.Store.UserColumn != "user_id" {
		t.Errorf("Store.UserColumn = %q, want user_id (default)", cfg.Store.UserColumn)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"CRAGREC_LOG_LEVEL": "loud"}},
		{"injected table name", map[string]string{"CRAGREC_STORE_TABLE": "reviews; DROP TABLE x"}},
		{"threshold at one", map[string]string{"CRAGREC_SIMILARITY_THRESHOLD": "1"}},
		{"unknown algorithm", map[string]string{"CRAGREC_EVAL_ALGORITHMS": "usercf,svd"}},
		{"unknown driver", map[string]string{"CRAGREC_STORE_DRIVER": "mysql"}},
		{"duplicate columns", map[string]string{"CRAGREC_STORE_ITEM_COLUMN": "user_id"}},
		{"zero workers", map[string]string{"CRAGREC_EVAL_WORKERS": "0"}},
		{"negative probe interval", map[string]string{"CRAGREC_PROBE_INTERVAL": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil, want validation error")
			}
		})
	}
}
