// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
)

const mainUsage = `Usage: cragrec <command> [flags] [args]

Commands:
  recommend   print route recommendations for one user
  evaluate    score recommenders against a ground-truth store
  split       write a holdout copy of a store with reviews dropped
  serve       run the recommendation HTTP API
  history     list or show saved evaluation runs

Run "cragrec <command> -h" for command flags.
`

type command func(ctx context.Context, env *env, args []string) int

var commands = map[string]command{
	"recommend": runRecommend,
	"evaluate":  runEvaluate,
	"split":     runSplit,
	"serve":     runServe,
	"history":   runHistory,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches args to a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, mainUsage)
		return exitError
	}

	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		fmt.Fprint(stdout, mainUsage)
		return exitOK
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "cragrec: unknown command %q\n\n%s", name, mainUsage)
		return exitError
	}

	return cmd(ctx, &env{stdout: stdout, stderr: stderr, loadConfig: loadConfig}, args[1:])
}
