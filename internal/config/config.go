// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for go-vrc-link.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, an optional JSON file and
// finally the built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-wide settings: user agent, master secret and logs.
	App App `envPrefix:"APP_"`

	// Adapter holds the platform endpoints and transport tuning.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local key-value database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Queue holds the task queue rate caps.
	Queue Queue `envPrefix:"QUEUE_"`

	// Workers holds the intervals of background jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// Server holds the diagnostics HTTP server settings.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// UserAgent is sent with every REST request and the pipeline handshake.
	// Env: APP_USER_AGENT
	UserAgent string `env:"USER_AGENT"`

	// MasterKey is the secret the credential wrapping key is derived from.
	// Must be kept confidential.
	// Env: APP_MASTER_KEY
	MasterKey string `env:"MASTER_KEY"`

	// LogDir is the directory the "logs" file is written to. Empty means the
	// directory of the executable.
	// Env: APP_LOG_DIR
	LogDir string `env:"LOG_DIR"`

	// Version is reported by the /healthz endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Adapter holds the platform endpoints and outbound transport settings.
type Adapter struct {
	// APIAddress is the REST base URL (e.g. "https://api.vrchat.cloud/api/1").
	// Env: ADAPTER_API_ADDRESS
	APIAddress string `env:"API_ADDRESS"`

	// PipelineAddress is the push websocket URL (e.g. "wss://pipeline.vrchat.cloud").
	// Env: ADAPTER_PIPELINE_ADDRESS
	PipelineAddress string `env:"PIPELINE_ADDRESS"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// PageRetryDelay is the pause before a throttled page is requested again.
	// Env: ADAPTER_PAGE_RETRY_DELAY
	PageRetryDelay time.Duration `env:"PAGE_RETRY_DELAY"`

	// PageRetries is how many times a throttled page is retried.
	// Env: ADAPTER_PAGE_RETRIES
	PageRetries int `env:"PAGE_RETRIES"`
}

// Storage groups the configuration for the local persistence backend.
type Storage struct {
	// DB holds the SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path or connection string (e.g. "vrc-link.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Queue holds task queue rate caps. Zero caps mean unlimited.
type Queue struct {
	// TotalPerMinute caps the number of tasks started in any trailing minute.
	// Env: QUEUE_TOTAL_PER_MINUTE
	TotalPerMinute int `env:"TOTAL_PER_MINUTE"`

	// TypePerMinute caps tasks per type id, e.g. "LIST_FRIENDS:15,UPDATE_STATUS:5".
	// Env: QUEUE_TYPE_PER_MINUTE
	TypePerMinute map[string]int `env:"TYPE_PER_MINUTE"`

	// ConcurrentTypes allows one in-flight task per distinct type id.
	// Env: QUEUE_CONCURRENT_TYPES
	ConcurrentTypes bool `env:"CONCURRENT_TYPES"`

	// PollInterval is how long the scheduler sleeps when nothing can start.
	// Env: QUEUE_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`
}

// Workers holds configuration for background jobs.
type Workers struct {
	// StatusPollInterval is how often the polling fallback checks staleness.
	// Env: WORKERS_STATUS_POLL_INTERVAL
	StatusPollInterval time.Duration `env:"STATUS_POLL_INTERVAL"`

	// StaleAfter is the age after which the current user is considered stale
	// when no push update arrived.
	// Env: WORKERS_STALE_AFTER
	StaleAfter time.Duration `env:"STALE_AFTER"`

	// WatchdogInterval is how often the pipeline watchdog checks the socket.
	// Env: WORKERS_WATCHDOG_INTERVAL
	WatchdogInterval time.Duration `env:"WATCHDOG_INTERVAL"`
}

// Server holds the diagnostics listener settings.
type Server struct {
	// DiagnosticsAddress is the "host:port" /metrics and /healthz listen on.
	// Empty disables the diagnostics server.
	// Env: SERVER_DIAGNOSTICS_ADDRESS
	DiagnosticsAddress string `env:"DIAGNOSTICS_ADDRESS"`
}

// Default returns the built-in defaults. They fill only the fields no other
// source has set.
func Default() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			UserAgent: "go-vrc-link/1.0 contact@example.com",
		},
		Adapter: Adapter{
			APIAddress:      "https://api.vrchat.cloud/api/1",
			PipelineAddress: "wss://pipeline.vrchat.cloud",
			RequestTimeout:  30 * time.Second,
			PageRetryDelay:  5 * time.Second,
			PageRetries:     5,
		},
		Storage: Storage{
			DB: DB{DSN: "vrc-link.db"},
		},
		Queue: Queue{
			TotalPerMinute: 60,
			TypePerMinute: map[string]int{
				"LIST_FRIENDS":  15,
				"UPDATE_STATUS": 5,
			},
			PollInterval: 500 * time.Millisecond,
		},
		Workers: Workers{
			StatusPollInterval: 30 * time.Second,
			StaleAfter:         2 * time.Minute,
			WatchdogInterval:   10 * time.Second,
		},
	}
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources. The first source that sets a
// field wins:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
