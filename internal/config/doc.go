// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package config provides centralized configuration management for the
recommendation service.

It handles loading, validation, and parsing of environment variables
(and, via LoadWithKoanf, an optional YAML file) into a single Config
struct, with sensible defaults for everything optional.

# Configuration Structure

  - StorageConfig: which recostore.Store backend to open (embedded
    Badger, external NATS JetStream KV, or Aerospike) and its connection
    parameters
  - RecommendConfig: deployment-time tunables for the recommendation
    engine's candidate generation, exploration, and training schedule
  - ServerConfig: HTTP listen address, timeouts, and environment
  - SecurityConfig: CORS origins and rate limiting, including the
    tighter limit applied to POST /api/recommend
  - LoggingConfig: log level, output format, and caller info

# Environment Variables

Storage:
  - STORAGE_BACKEND: "badger", "nats" or "aerospike" (default: badger)
  - STORAGE_BADGER_DIR: embedded database directory (default: /data/recommend)
  - STORAGE_NATS_URL: NATS server URL
  - STORAGE_NATS_EMBEDDED: run an in-process NATS server (default: false)
  - STORAGE_NATS_BUCKET: JetStream KV bucket name (default: recommend)
  - STORAGE_AEROSPIKE_HOST, STORAGE_AEROSPIKE_PORT (default: 3000),
    STORAGE_AEROSPIKE_NAMESPACE, STORAGE_AEROSPIKE_SET (default: recommend)

Recommend:
  - RECOMMEND_TRAIN_INTERVAL: time between scheduled training ticks (default: 5m)
  - RECOMMEND_TRAIN_TIMEOUT: per-tick deadline (default: 2m)
  - RECOMMEND_TRAIN_MIN_INTERVAL: floor between two ticks that actually run, regardless of trigger (default: 30s)
  - RECOMMEND_MIN_LABELED_FEATURES: validated and stored (default: 64); training always skips a tick with fewer than 64 labeled examples, whatever this is set to
  - RECOMMEND_UPGRADE_CHANCE: exploration swap probability (default: 0.05)
  - RECOMMEND_MAX_CANDIDATE_COUNT: candidate set cap before scoring (default: 200)
  - RECOMMEND_USER_HISTORY_LENGTH: per-user view history length (default: 50)

Server:
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_PORT: listen port (default: 3857)
  - HTTP_READ_TIMEOUT, HTTP_IDLE_TIMEOUT: connection timeouts
  - ENVIRONMENT: development, staging, or production

Security:
  - CORS_ORIGINS: comma-separated allowed origins
  - RATE_LIMIT_REQS, RATE_LIMIT_WINDOW, RATE_LIMIT_DISABLED: general API limiter
  - RECOMMEND_RATE_LIMIT_REQS, RECOMMEND_RATE_LIMIT_WINDOW: /api/recommend limiter

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file/line (default: false)

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal("Failed to load config:", err)
	}
	engine := recommend.NewEngine(store, cfg.EngineConfig(), logger)

# Thread Safety

Config is immutable after Load() and safe for concurrent read access
from multiple goroutines.
*/
package config
