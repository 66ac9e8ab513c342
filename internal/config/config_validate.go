// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

var validStorageBackends = map[string]bool{
	"badger":    true,
	"nats":      true,
	"aerospike": true,
}

// validateStorage validates the storage backend selection and its
// backend-specific required fields.
func (c *Config) validateStorage() error {
	if !validStorageBackends[c.Storage.Backend] {
		return fmt.Errorf("STORAGE_BACKEND must be one of: badger, nats, aerospike")
	}
	if c.Storage.Backend == "badger" && c.Storage.BadgerDir == "" {
		return fmt.Errorf("STORAGE_BADGER_DIR is required when STORAGE_BACKEND=badger")
	}
	if c.Storage.Backend == "nats" && !c.Storage.NATSEmbedded && c.Storage.NATSURL == "" {
		return fmt.Errorf("STORAGE_NATS_URL is required when STORAGE_BACKEND=nats and STORAGE_NATS_EMBEDDED=false")
	}
	if c.Storage.Backend == "nats" && c.Storage.NATSBucket == "" {
		return fmt.Errorf("STORAGE_NATS_BUCKET is required when STORAGE_BACKEND=nats")
	}
	if c.Storage.Backend == "aerospike" && c.Storage.AerospikeHost == "" {
		return fmt.Errorf("STORAGE_AEROSPIKE_HOST is required when STORAGE_BACKEND=aerospike")
	}
	if c.Storage.Backend == "aerospike" && c.Storage.AerospikeNamespace == "" {
		return fmt.Errorf("STORAGE_AEROSPIKE_NAMESPACE is required when STORAGE_BACKEND=aerospike")
	}
	return nil
}

// validateRecommend validates the recommendation engine's deployment-time
// tunables.
func (c *Config) validateRecommend() error {
	if c.Recommend.TrainInterval <= 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must be positive")
	}
	if c.Recommend.TrainTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_TIMEOUT must be positive")
	}
	if c.Recommend.TrainMinInterval < 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_MIN_INTERVAL must not be negative")
	}
	if c.Recommend.MinLabeledFeatures < 1 {
		return fmt.Errorf("RECOMMEND_MIN_LABELED_FEATURES must be at least 1")
	}
	if c.Recommend.UpgradeChance < 0 || c.Recommend.UpgradeChance > 1 {
		return fmt.Errorf("RECOMMEND_UPGRADE_CHANCE must be between 0 and 1")
	}
	if c.Recommend.MaxCandidateCount < 1 {
		return fmt.Errorf("RECOMMEND_MAX_CANDIDATE_COUNT must be at least 1")
	}
	if c.Recommend.UserHistoryLength < 1 {
		return fmt.Errorf("RECOMMEND_USER_HISTORY_LENGTH must be at least 1")
	}
	return nil
}

// validateServer validates HTTP server configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// Rate limit bounds, shared by the general and /api/recommend-specific limiters.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateSecurity validates CORS and rate limiting configuration.
func (c *Config) validateSecurity() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}

	if !c.Security.RateLimitDisabled {
		if err := validateRateLimitBounds("RATE_LIMIT", c.Security.RateLimitReqs, c.Security.RateLimitWindow); err != nil {
			return err
		}
		if err := validateRateLimitBounds("RECOMMEND_RATE_LIMIT", c.Security.RecommendRateLimitReqs, c.Security.RecommendRateLimitWindow); err != nil {
			return err
		}
	}
	return nil
}

func validateRateLimitBounds(prefix string, requests int, window time.Duration) error {
	if requests < minRateLimitRequests || requests > maxRateLimitRequests {
		return fmt.Errorf("%s_REQS must be between %d and %d", prefix, minRateLimitRequests, maxRateLimitRequests)
	}
	if window < minRateLimitWindow || window > maxRateLimitWindow {
		return fmt.Errorf("%s_WINDOW must be between %v and %v", prefix, minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins.
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
