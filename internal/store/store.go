// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cragrec/internal/config"
	"github.com/tomtom215/cragrec/internal/metrics"
	"github.com/tomtom215/cragrec/internal/validation"
)

// Driver names accepted in Options.Driver.
const (
	DriverAuto     = "auto"
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqliteAlias is the catalog name a SQLite file is attached under.
const sqliteAlias = "ratings_src"

// Options controls how a Store reads its review table.
type Options struct {
	// Name labels the circuit breaker and log lines, e.g. "test" or "truth".
	Name string

	Driver      string
	Table       string
	UserColumn  string
	ItemColumn  string
	ScoreColumn string

	QueryTimeout time.Duration

	BreakerEnabled     bool
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	Logger zerolog.Logger
}

// DefaultOptions matches the scraper's schema: reviews(user_id, route_id, score).
func DefaultOptions() Options {
	return Options{
		Name:               "store",
		Driver:             DriverAuto,
		Table:              "reviews",
		UserColumn:         "user_id",
		ItemColumn:         "route_id",
		ScoreColumn:        "score",
		QueryTimeout:       30 * time.Second,
		BreakerEnabled:     true,
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
		Logger:             zerolog.Nop(),
	}
}

// OptionsFromConfig maps the store section of the configuration onto Options.
func OptionsFromConfig(name string, cfg *config.StoreConfig, logger zerolog.Logger) Options {
	return Options{
		Name:               name,
		Driver:             cfg.Driver,
		Table:              cfg.Table,
		UserColumn:         cfg.UserColumn,
		ItemColumn:         cfg.ItemColumn,
		ScoreColumn:        cfg.ScoreColumn,
		QueryTimeout:       cfg.QueryTimeout,
		BreakerEnabled:     cfg.Breaker.Enabled,
		BreakerMaxFailures: cfg.Breaker.MaxFailures,
		BreakerTimeout:     cfg.Breaker.Timeout,
		Logger:             logger,
	}
}

func (o *Options) validate() error {
	for _, ident := range []string{o.Table, o.UserColumn, o.ItemColumn, o.ScoreColumn} {
		if !validation.IsSQLIdentifier(ident) {
			return fmt.Errorf("invalid SQL identifier %q", ident)
		}
	}
	if o.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive, got %s", o.QueryTimeout)
	}
	if o.BreakerEnabled && o.BreakerMaxFailures == 0 {
		return errors.New("breaker max failures must be at least 1")
	}
	return nil
}

// queries holds the SQL text prepared for one store at open time.
type queries struct {
	ratings string
	userIDs string
	score   string
	probe   string
}

func buildQueries(tableRef string, o *Options) queries {
	cols := fmt.Sprintf("CAST(%s AS BIGINT), CAST(%s AS BIGINT), CAST(%s AS FLOAT8)",
		o.UserColumn, o.ItemColumn, o.ScoreColumn)
	return queries{
		ratings: fmt.Sprintf("SELECT %s FROM %s", cols, tableRef),
		userIDs: fmt.Sprintf("SELECT CAST(%s AS BIGINT) FROM %s", o.UserColumn, tableRef),
		score: fmt.Sprintf("SELECT CAST(%s AS FLOAT8) FROM %s WHERE %s = $1 AND %s = $2 LIMIT 1",
			o.ScoreColumn, tableRef, o.UserColumn, o.ItemColumn),
		probe: fmt.Sprintf("SELECT %s, %s, %s FROM %s LIMIT 0",
			o.UserColumn, o.ItemColumn, o.ScoreColumn, tableRef),
	}
}

// Store is a read-only handle on a rating store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
	path   string
	opts   Options
	q      queries
	cb     *gobreaker.CircuitBreaker[any]
	logger zerolog.Logger
	closed atomic.Bool
}

// DetectDriver picks a backend from a store path.
func DetectDriver(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres
	case strings.HasSuffix(lower, ".duckdb"), strings.HasSuffix(lower, ".ddb"):
		return DriverDuckDB
	default:
		return DriverSQLite
	}
}

// Open opens the store at path read-only and checks that the review table
// and its columns exist.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, &Error{Op: "open", Path: path, Err: errors.New("empty store path")}
	}
	if err := opts.validate(); err != nil {
		return nil, &Error{Op: "open", Path: path, Err: err}
	}
	if opts.Name == "" {
		opts.Name = "store"
	}

	driver := opts.Driver
	if driver == "" || driver == DriverAuto {
		driver = DetectDriver(path)
	}

	var (
		db       *sql.DB
		tableRef string
		err      error
	)
	switch driver {
	case DriverDuckDB:
		db, err = openDuckDB(ctx, path)
		tableRef = opts.Table
	case DriverSQLite:
		db, err = openSQLite(ctx, path, opts.Logger)
		tableRef = sqliteAlias + "." + opts.Table
	case DriverPostgres:
		db, err = openPostgres(ctx, path)
		tableRef = opts.Table
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, &Error{Op: "open", Path: redact(path), Err: err}
	}

	s := &Store{
		db:     db,
		driver: driver,
		path:   path,
		opts:   opts,
		q:      buildQueries(tableRef, &opts),
		logger: opts.Logger.With().Str("store", opts.Name).Str("driver", driver).Logger(),
	}
	if opts.BreakerEnabled {
		s.cb = newBreaker("store-"+opts.Name, &opts, s.logger)
	}

	if err := s.probe(ctx); err != nil {
		closeQuietly(db)
		return nil, err
	}

	s.logger.Debug().Str("path", redact(path)).Msg("Rating store opened")
	return s, nil
}

func openDuckDB(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return db, nil
}

// openSQLite attaches a SQLite file to an in-memory DuckDB. A single
// connection is kept so the ATTACH is visible to every query.
func openSQLite(ctx context.Context, path string, logger zerolog.Logger) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := loadSQLiteScanner(ctx, db, logger); err != nil {
		closeQuietly(db)
		return nil, err
	}

	attach := fmt.Sprintf("ATTACH '%s' AS %s (TYPE SQLITE, READ_ONLY)", escapeLiteral(path), sqliteAlias)
	if _, err := db.ExecContext(ctx, attach); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("attach sqlite: %w", err)
	}
	return db, nil
}

// loadSQLiteScanner installs and loads sqlite_scanner, retrying with FORCE
// INSTALL when a cached copy is stale.
func loadSQLiteScanner(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	if _, err := db.ExecContext(ctx, "LOAD sqlite_scanner"); err == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, "INSTALL sqlite_scanner"); err != nil {
		logger.Warn().Err(err).Msg("sqlite_scanner install failed, retrying with FORCE INSTALL")
		if _, err := db.ExecContext(ctx, "FORCE INSTALL sqlite_scanner"); err != nil {
			return fmt.Errorf("install sqlite_scanner: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "LOAD sqlite_scanner"); err != nil {
		return fmt.Errorf("load sqlite_scanner: %w", err)
	}
	return nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", readOnlyDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// readOnlyDSN sets default_transaction_read_only on a URL DSN unless the
// caller already chose a value.
func readOnlyDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	if q.Get("default_transaction_read_only") == "" {
		q.Set("default_transaction_read_only", "on")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// redact strips credentials from a postgres URL for logs and errors.
func redact(path string) string {
	u, err := url.Parse(path)
	if err != nil || u.User == nil {
		return path
	}
	return u.Redacted()
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Path returns the location the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// DisplayPath returns Path with any credentials removed, for logs and labels.
func (s *Store) DisplayPath() string {
	return redact(s.path)
}

// Driver returns the resolved backend name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping verifies the store still answers queries.
func (s *Store) Ping(ctx context.Context) error {
	return s.run(ctx, "ping", func(ctx context.Context) (int, error) {
		return 0, s.db.PingContext(ctx)
	})
}

// Close releases the underlying connection pool. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return &Error{Op: "close", Path: redact(s.path), Err: err}
	}
	return nil
}

func (s *Store) probe(ctx context.Context) error {
	return s.run(ctx, "probe", func(ctx context.Context) (int, error) {
		rows, err := s.db.QueryContext(ctx, s.q.probe)
		if err != nil {
			return 0, err
		}
		defer closeQuietly(rows)
		return 0, rows.Err()
	})
}

// run executes fn under the query timeout and the circuit breaker and
// records the outcome.
func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context) (int, error)) error {
	if s.closed.Load() {
		return &Error{Op: op, Path: redact(s.path), Err: ErrStoreClosed}
	}

	qctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	start := time.Now()
	var rows int
	call := func() (any, error) {
		n, err := fn(qctx)
		rows = n
		return nil, err
	}

	var err error
	if s.cb != nil {
		_, err = s.cb.Execute(call)
	} else {
		_, err = call()
	}

	rejected := errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
	metrics.RecordStoreQuery(op, time.Since(start), rows, err, rejected)
	if err != nil {
		if rejected {
			s.logger.Warn().Err(err).Str("op", op).Msg("Store query rejected by circuit breaker")
		}
		return &Error{Op: op, Path: redact(s.path), Err: err}
	}
	return nil
}
