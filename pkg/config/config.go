// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package config holds the environment-var driven configuration shared by
// the squeue differential poller and the OCEL synthesizer binaries.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for both the poller and the synthesizer. Each
// binary only reads the fields relevant to it; the shared struct keeps one
// Load/Validate pair instead of duplicating env-var plumbing twice.
type Config struct {
	// SSHHost, if non-empty, runs squeue over SSH against this host
	// instead of as a local subprocess.
	SSHHost string
	// SSHUser is the remote username for SSH execution.
	SSHUser string
	// SSHKeyPath is a private key file used for SSH execution. Ignored
	// when SSHHost is empty.
	SSHKeyPath string

	// PollInterval is the time between squeue snapshot rounds.
	PollInterval time.Duration
	// ExecTimeout bounds a single squeue invocation.
	ExecTimeout time.Duration

	// ArchivePath is the root directory of the differential archive, read
	// by both binaries.
	ArchivePath string

	// OCELOutputPath is where the synthesizer writes its assembled log.
	OCELOutputPath string

	// LocalTimeZoneOffset is the fixed UTC offset squeue's naive
	// timestamps are assumed to be recorded in (squeue prints no zone).
	// Defaults to +01:00, matching the RWTH Aachen cluster this package
	// was originally written against.
	LocalTimeZoneOffset time.Duration

	// WorkerConcurrency bounds per-job fan-out in the archive writer and
	// the lifecycle synthesizer.
	WorkerConcurrency int

	// EmitDuplicateRunningEvents is loaded from
	// SQUEUE_OCEL_EMIT_DUPLICATE_RUNNING but is not passed to the
	// synthesizer, which never emits a second "Job Started" event for a job
	// that re-enters RUNNING; setting it changes no output.
	EmitDuplicateRunningEvents bool

	Debug bool
}

// NewDefault returns a Config with the package defaults, before Load
// applies any environment overrides.
func NewDefault() *Config {
	return &Config{
		PollInterval:        30 * time.Second,
		ExecTimeout:         10 * time.Second,
		ArchivePath:         "./archive",
		OCELOutputPath:      "./ocel.json",
		LocalTimeZoneOffset: time.Hour,
		WorkerConcurrency:   8,
		Debug:               getEnvBoolOrDefault("SQUEUE_OCEL_DEBUG", false),
	}
}

// Load overrides c's fields from environment variables where set.
func (c *Config) Load() {
	if host := os.Getenv("SQUEUE_OCEL_SSH_HOST"); host != "" {
		c.SSHHost = host
	}
	if user := os.Getenv("SQUEUE_OCEL_SSH_USER"); user != "" {
		c.SSHUser = user
	}
	if key := os.Getenv("SQUEUE_OCEL_SSH_KEY"); key != "" {
		c.SSHKeyPath = key
	}

	if interval := os.Getenv("SQUEUE_OCEL_POLL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.PollInterval = d
		}
	}
	if timeout := os.Getenv("SQUEUE_OCEL_EXEC_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.ExecTimeout = d
		}
	}

	if path := os.Getenv("SQUEUE_OCEL_ARCHIVE_PATH"); path != "" {
		c.ArchivePath = path
	}
	if path := os.Getenv("SQUEUE_OCEL_OUTPUT_PATH"); path != "" {
		c.OCELOutputPath = path
	}

	if offset := os.Getenv("SQUEUE_OCEL_TZ_OFFSET"); offset != "" {
		if d, err := time.ParseDuration(offset); err == nil {
			c.LocalTimeZoneOffset = d
		}
	}

	if concurrency := os.Getenv("SQUEUE_OCEL_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil {
			c.WorkerConcurrency = n
		}
	}

	c.EmitDuplicateRunningEvents = getEnvBoolOrDefault("SQUEUE_OCEL_EMIT_DUPLICATE_RUNNING", c.EmitDuplicateRunningEvents)
	c.Debug = getEnvBoolOrDefault("SQUEUE_OCEL_DEBUG", c.Debug)
}

// Validate checks c for values that would make either binary unable to
// start.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.ArchivePath == "" {
		return ErrMissingArchivePath
	}
	if c.WorkerConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.SSHHost != "" && c.SSHUser == "" {
		return ErrMissingSSHUser
	}
	return nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
