// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cragrec/internal/config"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"databasev2.db", DriverSQLite},
		{"/data/reviews.sqlite", DriverSQLite},
		{"test.duckdb", DriverDuckDB},
		{"TEST.DDB", DriverDuckDB},
		{"postgres://user:pw@localhost/crags", DriverPostgres},
		{"postgresql://localhost/crags", DriverPostgres},
		{"no_extension", DriverSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectDriver(tt.path); got != tt.want {
				t.Errorf("DetectDriver(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestReadOnlyDSN(t *testing.T) {
	got := readOnlyDSN("postgres://u:p@localhost:5432/crags?sslmode=disable")
	if !strings.Contains(got, "default_transaction_read_only=on") {
		t.Errorf("readOnlyDSN() = %q, missing read-only parameter", got)
	}
	if !strings.Contains(got, "sslmode=disable") {
		t.Errorf("readOnlyDSN() = %q, dropped existing parameter", got)
	}

	explicit := readOnlyDSN("postgres://localhost/crags?default_transaction_read_only=off")
	if !strings.Contains(explicit, "default_transaction_read_only=off") {
		t.Errorf("readOnlyDSN() overrode an explicit value: %q", explicit)
	}
}

func TestRedact(t *testing.T) {
	got := redact("postgres://climber:secret@db:5432/crags")
	if strings.Contains(got, "secret") {
		t.Errorf("redact() leaked password: %q", got)
	}
	if redact("databasev2.db") != "databasev2.db" {
		t.Error("redact() changed a plain file path")
	}
}

func TestEscapeLiteral(t *testing.T) {
	if got := escapeLiteral("o'brien.db"); got != "o''brien.db" {
		t.Errorf("escapeLiteral() = %q", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"injected table", func(o *Options) { o.Table = "reviews; DROP TABLE reviews" }, true},
		{"empty column", func(o *Options) { o.ScoreColumn = "" }, true},
		{"zero timeout", func(o *Options) { o.QueryTimeout = 0 }, true},
		{"breaker without threshold", func(o *Options) { o.BreakerMaxFailures = 0 }, true},
		{"breaker disabled without threshold", func(o *Options) {
			o.BreakerEnabled = false
			o.BreakerMaxFailures = 0
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			if err := o.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Table = "ticks"
	cfg.Store.Breaker.MaxFailures = 9

	o := OptionsFromConfig("truth", &cfg.Store, zerolog.Nop())
	if o.Name != "truth" || o.Table != "ticks" || o.BreakerMaxFailures != 9 {
		t.Errorf("OptionsFromConfig() = %+v", o)
	}
	if o.QueryTimeout != cfg.Store.QueryTimeout {
		t.Errorf("QueryTimeout = %s, want %s", o.QueryTimeout, cfg.Store.QueryTimeout)
	}
}

func TestBuildQueries(t *testing.T) {
	o := DefaultOptions()
	q := buildQueries("ratings_src.reviews", &o)

	if !strings.Contains(q.ratings, "FROM ratings_src.reviews") {
		t.Errorf("ratings query = %q", q.ratings)
	}
	if strings.Contains(q.ratings, "LIMIT") {
		t.Errorf("ratings query should not carry a LIMIT: %q", q.ratings)
	}
	if !strings.Contains(q.score, "user_id = $1 AND route_id = $2") {
		t.Errorf("score query = %q", q.score)
	}
}

func TestOpen_RejectsBadInput(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, "", DefaultOptions()); err == nil {
		t.Error("Open(\"\") should fail")
	}

	o := DefaultOptions()
	o.Driver = "mysql"
	_, err := Open(ctx, "x.db", o)
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("Open() error = %v, want ErrUnsupportedDriver", err)
	}

	var storeErr *Error
	if !errors.As(err, &storeErr) || storeErr.Op != "open" {
		t.Errorf("Open() error should be a *store.Error with op open, got %T", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	o := DefaultOptions()
	o.Driver = DriverDuckDB
	_, err := Open(context.Background(), t.TempDir()+"/missing.duckdb", o)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestError(t *testing.T) {
	err := &Error{Op: "ratings", Path: "test.duckdb", Err: ErrStoreClosed}
	if !errors.Is(err, ErrStoreClosed) {
		t.Error("Error should unwrap to its cause")
	}
	if got := err.Error(); got != "store ratings test.duckdb: store is closed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	o := DefaultOptions()
	o.BreakerMaxFailures = 2
	o.BreakerTimeout = time.Hour
	cb := newBreaker("store-test-trip", &o, zerolog.Nop())

	boom := errors.New("boom")
	fail := func() (any, error) { return nil, boom }

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(fail); !errors.Is(err, boom) {
			t.Fatalf("call %d error = %v, want boom", i, err)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}
	if _, err := cb.Execute(fail); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker error = %v, want ErrOpenState", err)
	}
}

func TestBreakerIgnoresCancellationAndBadRows(t *testing.T) {
	o := DefaultOptions()
	o.BreakerMaxFailures = 1
	cb := newBreaker("store-test-ignore", &o, zerolog.Nop())

	for _, err := range []error{context.Canceled, ErrMalformedRow} {
		_, _ = cb.Execute(func() (any, error) { return nil, err })
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

func TestStateHelpers(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		str   string
		val   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}
	for _, tt := range tests {
		if got := stateToString(tt.state); got != tt.str {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.str)
		}
		if got := stateToFloat(tt.state); got != tt.val {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.val)
		}
	}
}
