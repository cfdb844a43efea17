// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidPollInterval is returned when the poll interval is not
	// positive.
	ErrInvalidPollInterval = errors.New("poll interval must be greater than 0")

	// ErrMissingArchivePath is returned when the archive path is empty.
	ErrMissingArchivePath = errors.New("archive path is required")

	// ErrInvalidConcurrency is returned when worker concurrency is not
	// positive.
	ErrInvalidConcurrency = errors.New("worker concurrency must be greater than 0")

	// ErrMissingSSHUser is returned when an SSH host is configured without
	// a username.
	ErrMissingSSHUser = errors.New("ssh user is required when ssh host is set")
)
