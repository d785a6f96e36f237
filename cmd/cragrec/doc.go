// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

// Command cragrec recommends climbing routes from a review store and
// measures how well those recommendations hold up against held-out reviews.
//
// # Commands
//
//	cragrec recommend [-n N] [-threshold T] [-algorithm usercf|popularity] [-json] store user_id
//	cragrec evaluate [-truth path] [-good 3] [-seed N] [-workers N]
//	                 [-algorithms usercf,popularity] [-history dir] [-json] test_store num_tests
//	cragrec split [-drop 0.2] [-seed N] source_store dest_store
//	cragrec serve [-store path] [-host H] [-port P]
//	cragrec history [-history dir] [-n 10] [-json] [run_id]
//
// A typical offline experiment splits the full store into a holdout copy,
// then evaluates against the original:
//
//	cragrec split -drop 0.2 -seed 1 databasev2.db reviews_test.duckdb
//	cragrec evaluate -truth databasev2.db -algorithms usercf,popularity reviews_test.duckdb 200
//
// Stores ending in .duckdb or .ddb are opened natively, postgres:// URLs
// through lib/pq, and anything else as SQLite through DuckDB's sqlite
// extension. Every store is opened read-only.
//
// # Configuration
//
// Flag defaults come from internal/config: built-in values, then an optional
// YAML file ($CONFIG_PATH or ./cragrec.yaml), then CRAGREC_* environment
// variables. Flags given on the command line win.
//
// # Exit Status
//
// 0 on success, 1 on any error. Usage errors print the command's usage line
// to stderr.
//
// # Signals
//
// SIGINT and SIGTERM cancel the running command. serve drains in-flight
// requests for up to server.timeout before exiting.
package main
