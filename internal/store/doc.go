// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

/*
Package store reads review rows from a rating store.

A Store is always opened read-only. Three backends are supported:

  - duckdb: a DuckDB database file, opened with access_mode=read_only
  - sqlite: a SQLite file attached READ_ONLY to an in-memory DuckDB through
    the sqlite_scanner extension, so no separate SQLite driver is linked
  - postgres: a PostgreSQL database reached through lib/pq, with
    default_transaction_read_only set on the session

With Driver "auto" the backend is picked from the path: postgres:// and
postgresql:// URLs use postgres, .duckdb and .ddb files use duckdb, and
anything else is treated as SQLite, which is what the scraper produces.

Every query runs under its own timeout inside a circuit breaker. Failures
are returned as *Error; a store failure is never reported as "no data".

Split writes a new DuckDB store holding a random subset of another store's
rows, which is how held-out evaluation stores are produced.
*/
package store
