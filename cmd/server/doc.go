// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package main is the entry point for the Cartographus recommendation
service.

Cartographus ranks items for a given partition/user/current-item
combination using co-occurrence, recency, and popularity ranked lists
plus a trained logistic-regression model, learning from recorded views
and serving ranked results over a small HTTP API.

@title Cartographus Recommendation API
@version 1.0
@description Ranks items for a partition/user/current-item combination using co-occurrence, recency, and popularity ranked lists plus a trained logistic-regression model.

@contact.name GitHub Repository
@contact.url https://github.com/tomtom215/cartographus/issues

@license.name AGPL-3.0-or-later
@license.url https://www.gnu.org/licenses/agpl-3.0.html

@host localhost:3857
@BasePath /
@schemes http

@tag.name Recommend
@tag.description Scoring and view-recording endpoints

@tag.name Items
@tag.description Item catalog management

@tag.name Model
@tag.description Model inspection and training

@tag.name Core
@tag.description Health and operational endpoints

# Application Architecture

The server implements a layered architecture with Suture v4 process
supervision:

	RootSupervisor ("cartographus")
	├── DataSupervisor ("data-layer")
	├── MessagingSupervisor ("messaging-layer")
	│   └── RecommendService (periodic model training)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (recommendation API)

Component initialization order:

 1. Configuration: environment variables via config.Load()
 2. Logging: zerolog with JSON/console output modes
 3. Storage: the configured recostore.Store backend (embedded BadgerDB,
    an external/embedded NATS JetStream KV bucket, or an Aerospike
    in-network data grid cluster)
 4. Engine: the recommendation engine over the store
 5. Supervisor Tree: Suture v4 process supervision
 6. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded from environment variables, highest priority
first:

	Priority: Environment variables > Config file (LoadWithKoanf only) > Defaults

Core environment variables:

	# Storage
	STORAGE_BACKEND=badger        # badger, nats, or aerospike
	STORAGE_BADGER_DIR=/data/recommend

	# Server
	HTTP_PORT=3857                # listen port (EPSG:3857 reference)
	LOG_LEVEL=info                # trace, debug, info, warn, error
	LOG_FORMAT=json               # json or console

	# Recommend
	RECOMMEND_TRAIN_INTERVAL=5m
	RECOMMEND_UPGRADE_CHANCE=0.05

See internal/config's package doc for the complete reference.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (10s timeout)
 3. Lets the current training tick finish
 4. Closes the storage backend
 5. Reports any services that failed to stop

# Usage Examples

Development, embedded storage:

	export STORAGE_BACKEND=badger
	export ENVIRONMENT=development
	go run ./cmd/server

External NATS JetStream KV:

	export STORAGE_BACKEND=nats
	export STORAGE_NATS_URL=nats://nats:4222
	export STORAGE_NATS_BUCKET=recommend
	./cartographus

Docker:

	docker run -d \
	  -e STORAGE_BACKEND=badger \
	  -e ENVIRONMENT=production \
	  -p 3857:3857 \
	  ghcr.io/tomtom215/cartographus

# Port 3857

The default port 3857 references EPSG:3857 (Web Mercator projection),
carried over from this codebase's geographic-visualization origins.

API documentation is served at /swagger/index.html from the OpenAPI
document that the docs package holds as a hand-written template and
registers with swag; main.go loads it through a blank import.

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/recommend: Recommendation core
  - internal/recostore: Storage trait and backends
  - docs: Hand-written OpenAPI document for the /swagger UI
*/
package main
