// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// sync server and the sync client. It is populated by merging defaults,
// environment variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds host key signing parameters and version metadata.
	App App `envPrefix:"APP_"`

	// Storage holds the account database and collection file locations.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listening address of the sync server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the client's view of the sync server.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds protocol limits shared by both sides.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds background worker settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups persistence settings.
type Storage struct {
	// DB holds the account database connection settings. When DSN is empty
	// accounts are taken from Server.Users only.
	DB DB `envPrefix:"DB_"`

	// Collections holds the location of collection files.
	Collections Collections `envPrefix:"COLLECTIONS_"`
}

// App holds application-level configuration values.
type App struct {
	// TokenSignKey signs and verifies host keys.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every host key.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is how long a host key stays valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is the semantic version of the running binary.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Server holds network and timeout settings for the sync server.
type Server struct {
	// HTTPAddress is the TCP address the server listens on ("host:port").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds the handling of a single request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Users lists "login:password" pairs accepted by the server. When an
	// account database is configured they are seeded into it at start.
	// Env: SERVER_USERS (comma separated)
	Users []string `env:"USERS" envSeparator:","`
}

// DB holds connection settings for the account database.
type DB struct {
	// DSN is the PostgreSQL connection string.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Collections holds collection file locations.
type Collections struct {
	// BaseDir is the server folder holding one sub-folder per account.
	// Env: STORAGE_COLLECTIONS_BASE_DIR
	BaseDir string `env:"BASE_DIR"`

	// Path is the client's local collection file.
	// Env: STORAGE_COLLECTIONS_PATH
	Path string `env:"PATH"`
}

// Adapter holds the client's transport settings.
type Adapter struct {
	// HTTPAddress is the sync server endpoint.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single sync request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ConnectTimeout bounds establishing the TCP connection.
	// Env: ADAPTER_CONNECT_TIMEOUT
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`

	// TransferTimeout bounds full upload and download requests.
	// Env: ADAPTER_TRANSFER_TIMEOUT
	TransferTimeout time.Duration `env:"TRANSFER_TIMEOUT"`

	// Username and Password are exchanged for a host key on first sync.
	// Env: ADAPTER_USERNAME, ADAPTER_PASSWORD
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// Sync holds protocol limits.
type Sync struct {
	// ChunkSize bounds rows per chunk and graves per batch.
	// Env: SYNC_CHUNK_SIZE
	ChunkSize int `env:"CHUNK_SIZE"`

	// MaxUploadMegsUncompressed is the hard ceiling for a request body and
	// for a full upload before compression.
	// Env: SYNC_MAX_UPLOAD_MEGS_UNCOMP
	MaxUploadMegsUncompressed int64 `env:"MAX_UPLOAD_MEGS_UNCOMP"`

	// MaxUploadMegsCompressed is the ceiling for a compressed request body.
	// Env: SYNC_MAX_UPLOAD_MEGS_COMP
	MaxUploadMegsCompressed int64 `env:"MAX_UPLOAD_MEGS_COMP"`

	// SessionIdleTimeout aborts server sessions that saw no request for
	// this long.
	// Env: SYNC_SESSION_IDLE_TIMEOUT
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT"`

	// MaxClockSkew is the largest accepted difference between client and
	// server clocks.
	// Env: SYNC_MAX_CLOCK_SKEW
	MaxClockSkew time.Duration `env:"MAX_CLOCK_SKEW"`
}

// MaxUncompressedBytes returns the uncompressed ceiling in bytes.
func (s Sync) MaxUncompressedBytes() int64 {
	return s.MaxUploadMegsUncompressed * 1024 * 1024
}

// MaxCompressedBytes returns the compressed ceiling in bytes.
func (s Sync) MaxCompressedBytes() int64 {
	return s.MaxUploadMegsCompressed * 1024 * 1024
}

// Workers holds background worker settings.
type Workers struct {
	// SyncInterval makes the client sync periodically. Zero means one-shot.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// SweepInterval is how often the server looks for idle sessions.
	// Env: WORKERS_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`

	// PoolSize bounds concurrent CPU-heavy jobs.
	// Env: WORKERS_POOL_SIZE
	PoolSize int `env:"POOL_SIZE"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all sources. Later sources override earlier non-zero fields:
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
