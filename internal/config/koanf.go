// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"cragrec.yaml",
	"cragrec.yml",
	"/etc/cragrec/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			Driver:       "auto",
			Table:        "reviews",
			UserColumn:   "user_id",
			ItemColumn:   "route_id",
			ScoreColumn:  "score",
			QueryTimeout: 30 * time.Second,
			Breaker: BreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
			},
		},
		Recommend: RecommendConfig{
			NRecommendations:     300,
			SimilarityThreshold:  0.3,
			MaxRatings:           5000,
			ZeroIsUnrated:        false,
			PopularityMinRatings: 2,
		},
		Evaluate: EvaluateConfig{
			GroundTruthPath: "databasev2.db",
			GoodThreshold:   3,
			Seed:            0,
			Workers:         1,
			Algorithms:      []string{"usercf"},
		},
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              8470,
			Timeout:           30 * time.Second,
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
			ProbeInterval:     30 * time.Second,
		},
	}
}

// Default returns the built-in configuration without consulting files or the environment.
func Default() *Config {
	return defaultConfig()
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing priority, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set through the environment.
var sliceConfigPaths = []string{
	"evaluate.algorithms",
	"server.cors_allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"cragrec_log_level":  "logging.level",
	"cragrec_log_format": "logging.format",
	"cragrec_log_caller": "logging.caller",

	"cragrec_store_driver":               "store.driver",
	"cragrec_store_table":                "store.table",
	"cragrec_store_user_column":          "store.user_column",
	"cragrec_store_item_column":          "store.item_column",
	"cragrec_store_score_column":         "store.score_column",
	"cragrec_store_query_timeout":        "store.query_timeout",
	"cragrec_store_breaker_enabled":      "store.breaker.enabled",
	"cragrec_store_breaker_max_failures": "store.breaker.max_failures",
	"cragrec_store_breaker_timeout":      "store.breaker.timeout",

	"cragrec_n_recommendations":      "recommend.n_recommendations",
	"cragrec_similarity_threshold":   "recommend.similarity_threshold",
	"cragrec_max_ratings":            "recommend.max_ratings",
	"cragrec_zero_is_unrated":        "recommend.zero_is_unrated",
	"cragrec_popularity_min_ratings": "recommend.popularity_min_ratings",

	"cragrec_ground_truth_path": "evaluate.ground_truth_path",
	"cragrec_good_threshold":    "evaluate.good_threshold",
	"cragrec_eval_seed":         "evaluate.seed",
	"cragrec_eval_workers":      "evaluate.workers",
	"cragrec_eval_algorithms":   "evaluate.algorithms",
	"cragrec_history_path":      "evaluate.history_path",

	"cragrec_http_host":           "server.host",
	"cragrec_http_port":           "server.port",
	"cragrec_http_timeout":        "server.timeout",
	"cragrec_rate_limit_requests": "server.rate_limit_requests",
	"cragrec_rate_limit_window":   "server.rate_limit_window",
	"cragrec_serve_store_path":    "server.store_path",
	"cragrec_cors_origins":        "server.cors_allowed_origins",
	"cragrec_probe_interval":      "server.probe_interval",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
