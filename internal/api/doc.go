// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package api provides the HTTP REST API layer for the recommendation
service.

It implements the five-endpoint surface over the recommendation engine
and its storage trait, plus the health and metrics endpoints every
service in this codebase carries.

Key Components:

  - Router: Chi route configuration and middleware stack integration
  - Handler: request handlers wrapping internal/recommend.Engine and
    internal/recostore.Store
  - Response formatting: standardized JSON envelope with error codes
  - Rate limiting: per-IP request counts per time window (httprate),
    tighter on /api/recommend
  - CORS and security headers for cross-origin frontend access

Routes:

  - POST   /api/recommend        score and rank candidate items
  - GET    /api/view             record a view via query parameters
  - POST   /api/view             record a view via JSON body
  - POST   /api/items            insert or replace an item
  - DELETE /api/items            remove an item
  - GET    /api/items            fetch an item
  - GET    /api/model/{name}     fetch a model's weights
  - POST   /api/model/{name}/train  run a training tick
  - GET    /healthz              service and storage health
  - GET    /metrics              Prometheus metrics

Usage Example:

	import (
	    "github.com/tomtom215/cartographus/internal/api"
	    "github.com/tomtom215/cartographus/internal/recommend"
	)

	engine := recommend.NewEngine(store, cfg, logger)
	handler := api.NewHandler(engine, store, logger)
	router := api.NewRouter(handler, nil)

	http.ListenAndServe(":3857", router.SetupChi())

Error Handling:

Handlers translate recostore's Input/Storage/Serialization/
ConcurrencyRetryExhaustion error classification into HTTP status
codes: bad input is 400, a skipped training tick is 204 (not an
error), and storage failures are 500. See writeStoreError.

Thread Safety:

All handlers are safe for concurrent use; the engine and store they
wrap provide their own synchronization.
*/
package api
