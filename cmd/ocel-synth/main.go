// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Command ocel-synth replays a squeue differential archive (C7) and
// assembles it into an object-centric event log (C8).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jontk/squeue-ocel/internal/archive"
	"github.com/jontk/squeue-ocel/internal/ocel"
	"github.com/jontk/squeue-ocel/internal/synth"
	"github.com/jontk/squeue-ocel/pkg/config"
	"github.com/jontk/squeue-ocel/pkg/logging"
	"github.com/jontk/squeue-ocel/pkg/metrics"
)

var (
	Version   = "dev"
	BuildTime = ""
	Commit    = ""

	archivePath string
	outputPath  string
	tzOffset    string
	concurrency int
	debug       bool

	rootCmd = &cobra.Command{
		Use:     "ocel-synth",
		Short:   "Synthesize an OCEL log from a squeue differential archive",
		Long:    `Replays every job's archived snapshot and delta stream into Job/Account/Group/Host/Partition objects and lifecycle events, then writes an OCEL 2.0 JSON log.`,
		Version: Version,
		RunE:    runSynth,
	}
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)

	rootCmd.Flags().StringVar(&archivePath, "archive", "", "archive root directory to replay (env: SQUEUE_OCEL_ARCHIVE_PATH)")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "OCEL output file path (env: SQUEUE_OCEL_OUTPUT_PATH)")
	rootCmd.Flags().StringVar(&tzOffset, "tz-offset", "", "fixed UTC offset squeue's naive timestamps are interpreted under, e.g. 1h (env: SQUEUE_OCEL_TZ_OFFSET)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of job directories synthesized concurrently")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func runSynth(cmd *cobra.Command, args []string) error {
	cfg := config.NewDefault()
	cfg.Load()
	if archivePath != "" {
		cfg.ArchivePath = archivePath
	}
	if outputPath != "" {
		cfg.OCELOutputPath = outputPath
	}
	if concurrency > 0 {
		cfg.WorkerConcurrency = concurrency
	}
	if debug {
		cfg.Debug = true
	}
	if tzOffset != "" {
		d, err := time.ParseDuration(tzOffset)
		if err != nil {
			return fmt.Errorf("--tz-offset: %w", err)
		}
		cfg.LocalTimeZoneOffset = d
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(logging.DefaultConfig())
	collector := metrics.NewInMemoryCollector()

	arc := archive.New(cfg.ArchivePath)
	opts := synth.DefaultOptions()
	opts.SchedulerUTCOffset = cfg.LocalTimeZoneOffset
	opts.Concurrency = cfg.WorkerConcurrency
	opts.Logger = logger
	opts.Metrics = collector

	collected, err := synth.SynthesizeAll(context.Background(), arc, opts)
	if err != nil {
		return fmt.Errorf("synthesize archive: %w", err)
	}

	stats := collector.GetStats()
	logger.Info("synthesized jobs", "jobs", len(collected.Jobs), "events", stats.TotalEvents, "avg_duration", stats.SynthDuration.Average.String())

	log, err := ocel.Assemble(collected)
	if err != nil {
		return fmt.Errorf("assemble OCEL log: %w", err)
	}

	if err := ocel.WriteFile(cfg.OCELOutputPath, log); err != nil {
		return fmt.Errorf("write OCEL log: %w", err)
	}

	logger.Info("OCEL log written", "path", cfg.OCELOutputPath, "events", len(log.Events), "objects", len(log.Objects))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
