// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/cartographus/internal/recommend"
)

// Config holds all application configuration loaded from environment
// variables and an optional config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Storage: which recostore.Store backend to open (embedded Badger,
//     an external NATS JetStream KV cluster, or an Aerospike
//     in-network data grid) and its connection parameters.
//
//  2. Recommend: tunables for the recommendation engine's ranked
//     lists, candidate generation, exploration, and training schedule.
//
//  3. Server: HTTP listen address and timeouts.
//
//  4. Security: CORS and rate limiting for the HTTP API.
//
//  5. Logging: log level and output format.
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//
// Validation:
// The Load() function validates all required fields and returns an error if:
//   - Storage.Backend names an unknown backend
//   - Storage.BadgerDir is empty when Backend is "badger"
//   - Storage.NATSURL is empty when Backend is "nats" and NATSEmbedded is false
//   - Numeric fields are negative where that makes no sense
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Recommend RecommendConfig `koanf:"recommend"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// StorageConfig selects and configures the recostore.Store backend.
//
// Environment Variables:
//   - STORAGE_BACKEND: "badger" (embedded, single-process), "nats"
//     (external JetStream KV, shared across processes), or "aerospike"
//     (in-network data grid, shared across processes). Default: badger.
//   - STORAGE_BADGER_DIR: directory for the embedded Badger database.
//     Default: /data/recommend.
//   - STORAGE_NATS_URL: NATS server URL, e.g. nats://localhost:4222.
//   - STORAGE_NATS_EMBEDDED: when true, runs an in-process NATS server
//     instead of dialing STORAGE_NATS_URL. Intended for single-node
//     deployments that still want the NATS KV code path. Default: false.
//   - STORAGE_NATS_BUCKET: JetStream KV bucket name. Default: recommend.
//   - STORAGE_AEROSPIKE_HOST: Aerospike seed node hostname.
//   - STORAGE_AEROSPIKE_PORT: Aerospike seed node port. Default: 3000.
//   - STORAGE_AEROSPIKE_NAMESPACE: Aerospike namespace.
//   - STORAGE_AEROSPIKE_SET: Aerospike set name. Default: recommend.
type StorageConfig struct {
	Backend      string `koanf:"backend"`
	BadgerDir    string `koanf:"badger_dir"`
	NATSURL      string `koanf:"nats_url"`
	NATSEmbedded bool   `koanf:"nats_embedded"`
	NATSBucket   string `koanf:"nats_bucket"`

	AerospikeHost      string `koanf:"aerospike_host"`
	AerospikePort      int    `koanf:"aerospike_port"`
	AerospikeNamespace string `koanf:"aerospike_namespace"`
	AerospikeSet       string `koanf:"aerospike_set"`
}

// RecommendConfig holds the tunables for the recommendation engine
// that are sensible to expose as deployment-time configuration, as
// opposed to the algorithm-internal defaults in recommend.DefaultConfig.
//
// Environment Variables:
//   - RECOMMEND_TRAIN_INTERVAL: time between scheduled training ticks
//     (default: 5m).
//   - RECOMMEND_TRAIN_TIMEOUT: per-tick deadline (default: 2m).
//   - RECOMMEND_MIN_LABELED_FEATURES: must be at least 1 (default: 64);
//     copied into the recommend config, but training skips a tick with
//     fewer than 64 labeled examples whatever this is set to.
//   - RECOMMEND_UPGRADE_CHANCE: probability of the exploratory
//     tail-into-prefix swap applied after scoring (default: 0.05).
//   - RECOMMEND_MAX_CANDIDATE_COUNT: candidate set size cap before
//     scoring (default: 200).
//   - RECOMMEND_USER_HISTORY_LENGTH: per-user FIFO view history length
//     (default: 50).
type RecommendConfig struct {
	TrainInterval      time.Duration `koanf:"train_interval"`
	TrainTimeout       time.Duration `koanf:"train_timeout"`
	TrainMinInterval   time.Duration `koanf:"train_min_interval"`
	MinLabeledFeatures int           `koanf:"min_labeled_features"`
	UpgradeChance      float64       `koanf:"upgrade_chance"`
	MaxCandidateCount  int           `koanf:"max_candidate_count"`
	UserHistoryLength  int           `koanf:"user_history_length"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// SecurityConfig holds CORS and rate limiting settings for the HTTP API.
type SecurityConfig struct {
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// RecommendRateLimitReqs is the tighter per-route limit applied to
	// POST /api/recommend specifically (see api.ChiMiddleware.RateLimitRecommend).
	RecommendRateLimitReqs   int           `koanf:"recommend_rate_limit_reqs"`
	RecommendRateLimitWindow time.Duration `koanf:"recommend_rate_limit_window"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from environment variables, applying the
// built-in defaults first. It is the entry point used by cmd/server;
// LoadWithKoanf in koanf.go layers in an optional YAML file as well.
func Load() (*Config, error) {
	cfg := &Config{
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", "badger"),
			BadgerDir:    getEnv("STORAGE_BADGER_DIR", "/data/recommend"),
			NATSURL:      getEnv("STORAGE_NATS_URL", ""),
			NATSEmbedded: getBoolEnv("STORAGE_NATS_EMBEDDED", false),
			NATSBucket:   getEnv("STORAGE_NATS_BUCKET", "recommend"),

			AerospikeHost:      getEnv("STORAGE_AEROSPIKE_HOST", ""),
			AerospikePort:      getIntEnv("STORAGE_AEROSPIKE_PORT", 3000),
			AerospikeNamespace: getEnv("STORAGE_AEROSPIKE_NAMESPACE", ""),
			AerospikeSet:       getEnv("STORAGE_AEROSPIKE_SET", "recommend"),
		},
		Recommend: RecommendConfig{
			TrainInterval:      getDurationEnv("RECOMMEND_TRAIN_INTERVAL", 5*time.Minute),
			TrainTimeout:       getDurationEnv("RECOMMEND_TRAIN_TIMEOUT", 2*time.Minute),
			TrainMinInterval:   getDurationEnv("RECOMMEND_TRAIN_MIN_INTERVAL", 30*time.Second),
			MinLabeledFeatures: getIntEnv("RECOMMEND_MIN_LABELED_FEATURES", 64),
			UpgradeChance:      getFloatEnv("RECOMMEND_UPGRADE_CHANCE", 0.05),
			MaxCandidateCount:  getIntEnv("RECOMMEND_MAX_CANDIDATE_COUNT", 200),
			UserHistoryLength:  getIntEnv("RECOMMEND_USER_HISTORY_LENGTH", 50),
		},
		Server: ServerConfig{
			Port:        getIntEnv("HTTP_PORT", 3857),
			Host:        getEnv("HTTP_HOST", "0.0.0.0"),
			ReadTimeout: getDurationEnv("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout: getDurationEnv("HTTP_IDLE_TIMEOUT", 60*time.Second),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Security: SecurityConfig{
			CORSOrigins:              getSliceEnv("CORS_ORIGINS", nil),
			RateLimitReqs:            getIntEnv("RATE_LIMIT_REQS", 100),
			RateLimitWindow:          getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			RateLimitDisabled:        getBoolEnv("RATE_LIMIT_DISABLED", false),
			RecommendRateLimitReqs:   getIntEnv("RECOMMEND_RATE_LIMIT_REQS", 60),
			RecommendRateLimitWindow: getDurationEnv("RECOMMEND_RATE_LIMIT_WINDOW", time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Caller: getBoolEnv("LOG_CALLER", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// EngineConfig builds a recommend.Config from recommend.DefaultConfig,
// overridden by the deployment-time tunables in c.Recommend. Algorithm
// internals not exposed as configuration (ranked list decay, training
// regularization, activity TTLs) keep their package defaults.
func (c *Config) EngineConfig() *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.UpgradeChance = c.Recommend.UpgradeChance
	rc.MaxCandidateCount = c.Recommend.MaxCandidateCount
	rc.UserHistoryLength = c.Recommend.UserHistoryLength
	rc.Training.Interval = c.Recommend.TrainInterval
	rc.Training.Timeout = c.Recommend.TrainTimeout
	rc.Training.MinInterval = c.Recommend.TrainMinInterval
	rc.Training.MinLabeledFeatures = c.Recommend.MinLabeledFeatures
	return rc
}
