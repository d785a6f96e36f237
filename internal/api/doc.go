// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

/*
Package api serves route recommendations over HTTP.

Routes (chi):

	GET /api/v1/recommendations/{userID}?n=&threshold=&algorithm=
	GET /api/v1/health
	GET /api/v1/health/live
	GET /metrics

Every response except /metrics uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}

Each recommendation request reads the rating store afresh, so there is no
cache to invalidate when the store changes. Store failures map to 503;
an unknown user is a successful empty list.

Global middleware: request IDs wired into the logging context, panic
recovery, optional CORS, per-IP rate limiting (httprate) and Prometheus
request metrics labelled by route pattern.
*/
package api
