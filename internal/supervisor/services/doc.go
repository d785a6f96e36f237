// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

/*
Package services adapts cragrec components to suture's Serve(ctx) error model.

HTTPServerService wraps *http.Server: ListenAndServe runs in a goroutine and
cancellation triggers a bounded graceful Shutdown.

StoreProbeService pings the served rating store on a ticker and publishes
the result as the store_up gauge, logging only on transitions.

Return values follow suture's rules: a non-nil error restarts the service,
ctx.Err() after cancellation is a normal stop.
*/
package services
