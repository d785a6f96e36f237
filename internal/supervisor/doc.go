// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

/*
Package supervisor runs the long-lived parts of cragrec serve under suture v4.

The tree has two layers so a failing background probe cannot restart the
HTTP server:

	Tree ("cragrec")
	├── "store-layer"
	│   └── services.StoreProbeService
	└── "api-layer"
	    └── services.HTTPServerService

Supervisor events (service start, failure, backoff) are logged through
sutureslog onto the zerolog logger, via logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewTree(logging.NewSlogLogger("supervisor"),
	    supervisor.TreeConfigFromServer(&cfg.Server))
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.Timeout))
	tree.AddStoreService(services.NewStoreProbeService(st, cfg.Server.ProbeInterval, logger))
	return tree.Serve(ctx)

Serve returns once ctx is canceled and every service has returned, or the
shutdown timeout has passed. UnstoppedServiceReport names the stragglers.
*/
package supervisor
