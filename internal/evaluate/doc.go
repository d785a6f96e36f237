// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

/*
Package evaluate measures recommenders against a held-out ground truth.

A Harness samples users from a test store, asks each Recommender for
routes, and looks every recommended (user, route) pair up in a separate
ground-truth store:

	POSITIVE  the user reviewed the route with score >= the good threshold
	NEGATIVE  the user reviewed the route below the threshold
	UNKNOWN   the user never reviewed the route

The test and ground-truth stores must be different stores; NewHarness
refuses the same handle or the same path for both.

Sampling draws from one entry per review row, so active reviewers are
picked more often. A failure for one user is recorded in the Report and
the run continues; only cancellation of the context aborts a run.

Reports can be kept in a badger-backed History keyed by run ID.
*/
package evaluate
