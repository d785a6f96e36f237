// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cragrec/internal/evaluate"
)

const historyUsage = "Usage: cragrec history [flags] [run_id]"

func runHistory(ctx context.Context, e *env, args []string) int {
	cfg, ok := e.config()
	if !ok {
		return exitError
	}

	fs := e.newFlagSet("history", historyUsage)
	path := fs.String("history", cfg.Evaluate.HistoryPath, "badger directory holding saved runs")
	limit := fs.Int("n", 10, "number of runs to list, 0 for all")
	asJSON := fs.Bool("json", false, "print JSON instead of text")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(e.stderr, historyUsage)
		return exitError
	}
	if *path == "" {
		return e.fail(errors.New("no history directory: set -history or CRAGREC_HISTORY_PATH"))
	}

	h, err := evaluate.OpenHistory(*path)
	if err != nil {
		return e.fail(err)
	}
	defer func() { _ = h.Close() }()

	if fs.NArg() == 1 {
		report, err := h.Get(ctx, fs.Arg(0))
		if err != nil {
			return e.fail(err)
		}
		if *asJSON {
			err = report.WriteJSON(e.stdout)
		} else {
			err = report.WriteText(e.stdout)
		}
		if err != nil {
			return e.fail(err)
		}
		return exitOK
	}

	reports, err := h.List(ctx, *limit)
	if err != nil {
		return e.fail(err)
	}
	if *asJSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		if reports == nil {
			reports = []*evaluate.Report{}
		}
		if err := enc.Encode(reports); err != nil {
			return e.fail(err)
		}
		return exitOK
	}
	if err := printHistory(e.stdout, reports); err != nil {
		return e.fail(err)
	}
	return exitOK
}

// printHistory writes one line per run, newest first as given.
func printHistory(w io.Writer, reports []*evaluate.Report) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No saved evaluation runs")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tUSERS\tRESULTS")
	for _, r := range reports {
		parts := make([]string, 0, len(r.Algorithms))
		for i := range r.Algorithms {
			a := &r.Algorithms[i]
			parts = append(parts, fmt.Sprintf("%s precision=%.3f coverage=%.3f", a.Name, a.Precision, a.Coverage))
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			r.RunID, r.StartedAt.Format(time.RFC3339), r.SampleSize, strings.Join(parts, "; "))
	}
	return tw.Flush()
}
