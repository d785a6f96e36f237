// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

/*
Package config loads cragrec configuration.

Configuration is layered with koanf. Later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./cragrec.yaml, or /etc/cragrec/config.yaml
 3. Environment variables listed in envMappings

Command line flags are applied by cmd/cragrec on top of the loaded Config.

# Environment Variables

Logging:
  - CRAGREC_LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - CRAGREC_LOG_FORMAT: json, console (default: console)
  - CRAGREC_LOG_CALLER: include caller info (default: false)

Rating store:
  - CRAGREC_STORE_DRIVER: auto, duckdb, sqlite, postgres (default: auto)
  - CRAGREC_STORE_TABLE: review table name (default: reviews)
  - CRAGREC_STORE_USER_COLUMN, CRAGREC_STORE_ITEM_COLUMN, CRAGREC_STORE_SCORE_COLUMN
  - CRAGREC_STORE_QUERY_TIMEOUT: per-query timeout (default: 30s)
  - CRAGREC_STORE_BREAKER_ENABLED, CRAGREC_STORE_BREAKER_MAX_FAILURES, CRAGREC_STORE_BREAKER_TIMEOUT

Recommendation:
  - CRAGREC_N_RECOMMENDATIONS: maximum recommendations returned (default: 300)
  - CRAGREC_SIMILARITY_THRESHOLD: neighbours need similarity strictly above this (default: 0.3)
  - CRAGREC_MAX_RATINGS: cap on rating rows read per request, 0 for none (default: 5000)
  - CRAGREC_ZERO_IS_UNRATED: treat stored zero scores as unrated (default: false)
  - CRAGREC_POPULARITY_MIN_RATINGS: ratings an item needs in the popularity baseline (default: 2)

Evaluation:
  - CRAGREC_GROUND_TRUTH_PATH: full review store (default: databasev2.db)
  - CRAGREC_GOOD_THRESHOLD: score counted as a liked route (default: 3)
  - CRAGREC_EVAL_SEED: sampling seed, 0 for time based (default: 0)
  - CRAGREC_EVAL_WORKERS: concurrent users evaluated (default: 1)
  - CRAGREC_EVAL_ALGORITHMS: comma separated list of usercf, popularity (default: usercf)
  - CRAGREC_HISTORY_PATH: badger directory for run history, empty disables it

HTTP server:
  - CRAGREC_HTTP_HOST, CRAGREC_HTTP_PORT (default: 127.0.0.1:8470)
  - CRAGREC_HTTP_TIMEOUT (default: 30s)
  - CRAGREC_RATE_LIMIT_REQUESTS, CRAGREC_RATE_LIMIT_WINDOW (default: 60 per 1m)
  - CRAGREC_SERVE_STORE_PATH: rating store served by the API
  - CRAGREC_CORS_ORIGINS: comma separated origins allowed cross-origin access
  - CRAGREC_PROBE_INTERVAL: background store health probe, 0 disables it (default: 30s)
*/
package config
