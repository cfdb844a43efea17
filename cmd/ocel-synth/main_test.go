// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "ocel-synth", rootCmd.Use)
}

func TestRunSynth_EmptyArchiveProducesEmptyLog(t *testing.T) {
	archivePath = t.TempDir()
	outputPath = t.TempDir() + "/ocel.json"
	defer func() { archivePath, outputPath = "", "" }()

	old, hadEnv := os.LookupEnv("SQUEUE_OCEL_ARCHIVE_PATH")
	os.Unsetenv("SQUEUE_OCEL_ARCHIVE_PATH")
	defer func() {
		if hadEnv {
			os.Setenv("SQUEUE_OCEL_ARCHIVE_PATH", old)
		}
	}()

	// With an empty archive directory, synthesis should run against a
	// zero-job list rather than error.
	err := runSynth(rootCmd, nil)
	require.NoError(t, err)
}

func TestRunSynth_BadTZOffset(t *testing.T) {
	archivePath = t.TempDir()
	outputPath = t.TempDir() + "/ocel.json"
	tzOffset = "not-a-duration"
	defer func() { archivePath, outputPath, tzOffset = "", "", "" }()

	err := runSynth(rootCmd, nil)
	assert.Error(t, err)
}
