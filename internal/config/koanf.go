// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cartographus/config.yaml",
	"/etc/cartographus/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:      "badger",
			BadgerDir:    "/data/recommend",
			NATSURL:      "",
			NATSEmbedded: false,
			NATSBucket:   "recommend",

			AerospikeHost:      "",
			AerospikePort:      3000,
			AerospikeNamespace: "",
			AerospikeSet:       "recommend",
		},
		Recommend: RecommendConfig{
			TrainInterval:      5 * time.Minute,
			TrainTimeout:       2 * time.Minute,
			TrainMinInterval:   30 * time.Second,
			MinLabeledFeatures: 64,
			UpgradeChance:      0.05,
			MaxCandidateCount:  200,
			UserHistoryLength:  50,
		},
		Server: ServerConfig{
			Port:        3857,
			Host:        "0.0.0.0",
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:              []string{},
			RateLimitReqs:            100,
			RateLimitWindow:          time.Minute,
			RateLimitDisabled:        false,
			RecommendRateLimitReqs:   60,
			RecommendRateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is an alternative to Load() (which reads environment
// variables directly) when a YAML config file needs to participate in
// the precedence chain, e.g. for deployments that template config.yaml
// rather than setting dozens of environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// STORAGE_BADGER_DIR -> storage.badger_dir
	// RECOMMEND_TRAIN_INTERVAL -> recommend.train_interval
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - STORAGE_BACKEND -> storage.backend
//   - STORAGE_BADGER_DIR -> storage.badger_dir
//   - RECOMMEND_TRAIN_INTERVAL -> recommend.train_interval
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
//   - CORS_ORIGINS -> security.cors_origins
//   - RATE_LIMIT_REQS -> security.rate_limit_reqs
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	switch {
	case strings.HasPrefix(key, "storage_"):
		return "storage." + strings.TrimPrefix(key, "storage_")
	case strings.HasPrefix(key, "recommend_rate_limit_"):
		return "security." + key
	case strings.HasPrefix(key, "recommend_"):
		return "recommend." + strings.TrimPrefix(key, "recommend_")
	case strings.HasPrefix(key, "http_"):
		return "server." + strings.TrimPrefix(key, "http_")
	case key == "environment":
		return "server.environment"
	case strings.HasPrefix(key, "cors_"):
		return "security." + key
	case strings.HasPrefix(key, "rate_limit_"):
		return "security." + key
	case strings.HasPrefix(key, "log_"):
		return "logging." + strings.TrimPrefix(key, "log_")
	default:
		return key
	}
}
