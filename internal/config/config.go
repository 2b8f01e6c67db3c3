// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package config loads layered configuration: built-in defaults, an
// optional YAML file, then environment variables. Later layers win.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Neo4j     Neo4jConfig     `koanf:"neo4j"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP. Zero
	// disables rate limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// StorageConfig selects and configures the graph store backend.
type StorageConfig struct {
	// Backend is "badger" or "neo4j".
	Backend string `koanf:"backend"`

	// Path is the Badger database directory.
	Path string `koanf:"path"`

	// GCInterval sets how often the Badger value log GC runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// Neo4jConfig holds Bolt connection settings for the neo4j backend.
type Neo4jConfig struct {
	URI      string `koanf:"uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`

	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// RecommendConfig holds recommendation defaults.
type RecommendConfig struct {
	// DefaultLimit is the row cap when a request does not specify one.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit bounds the per-request limit parameter.
	MaxLimit int `koanf:"max_limit"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr formats the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}

	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path required for badger backend")
		}
	case "neo4j":
		if c.Neo4j.URI == "" {
			return fmt.Errorf("neo4j.uri required for neo4j backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}

	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("recommend.default_limit must be positive")
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("recommend.max_limit must be at least recommend.default_limit")
	}
	return nil
}
