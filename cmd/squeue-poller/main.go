// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Command squeue-poller runs the squeue differential poller (C3->C6):
// it repeatedly snapshots the scheduler queue, archives per-job deltas to
// disk, and optionally serves the live round stream over WebSocket/SSE.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/internal/archive"
	"github.com/jontk/squeue-ocel/internal/bus"
	"github.com/jontk/squeue-ocel/internal/fetch"
	"github.com/jontk/squeue-ocel/internal/poll"
	"github.com/jontk/squeue-ocel/pkg/auth"
	"github.com/jontk/squeue-ocel/pkg/config"
	pipelinectx "github.com/jontk/squeue-ocel/pkg/context"
	"github.com/jontk/squeue-ocel/pkg/logging"
	"github.com/jontk/squeue-ocel/pkg/metrics"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = ""
	Commit    = ""

	archivePath  string
	pollInterval string
	sshHost      string
	sshUser      string
	sshKeyPath   string
	knownHosts   string
	listenAddr   string
	filterMode   string
	jobIDs       []string
	debug        bool

	rootCmd = &cobra.Command{
		Use:     "squeue-poller",
		Short:   "Poll squeue and archive per-job deltas",
		Long:    `Repeatedly snapshots a SLURM scheduler's job queue and durably archives the differences between rounds.`,
		Version: Version,
		RunE:    runPoller,
	}
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)

	rootCmd.Flags().StringVar(&archivePath, "archive", "", "archive root directory (env: SQUEUE_OCEL_ARCHIVE_PATH)")
	rootCmd.Flags().StringVar(&pollInterval, "interval", "", "poll interval, e.g. 30s (env: SQUEUE_OCEL_POLL_INTERVAL)")
	rootCmd.Flags().StringVar(&sshHost, "ssh-host", "", "remote host:port to run squeue over SSH instead of locally")
	rootCmd.Flags().StringVar(&sshUser, "ssh-user", "", "SSH username")
	rootCmd.Flags().StringVar(&sshKeyPath, "ssh-key", "", "SSH private key path")
	rootCmd.Flags().StringVar(&knownHosts, "known-hosts", "", "known_hosts file for SSH host key verification (insecure if unset)")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "address to serve the squeue-rows websocket/SSE stream on, e.g. :8080 (disabled if unset)")
	rootCmd.Flags().StringVar(&filterMode, "filter", "all", "squeue filter mode: all, mine, jobids")
	rootCmd.Flags().StringSliceVar(&jobIDs, "job-ids", nil, "job ids to filter on when --filter=jobids")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func buildExecutor() (api.SessionExecutor, error) {
	if sshHost == "" {
		return fetch.NewLocalExecutor(), nil
	}

	if sshUser == "" {
		return nil, fmt.Errorf("--ssh-user is required with --ssh-host")
	}

	var provider auth.Provider
	if sshKeyPath != "" {
		provider = auth.NewKeyProvider(sshKeyPath, "")
	} else {
		return nil, fmt.Errorf("--ssh-key is required with --ssh-host")
	}

	hostKeyCB, err := buildHostKeyCallback()
	if err != nil {
		return nil, err
	}

	return fetch.NewSSHExecutor(sshUser+"@"+withDefaultPort(sshHost), provider, hostKeyCB, 10*time.Second), nil
}

func withDefaultPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "22")
}

func buildHostKeyCallback() (ssh.HostKeyCallback, error) {
	if knownHosts == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(knownHosts)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", knownHosts, err)
	}
	return cb, nil
}

func buildFilter() (api.SnapshotFilter, error) {
	switch filterMode {
	case "all", "":
		return api.SnapshotFilter{Mode: api.FilterAll}, nil
	case "mine":
		return api.SnapshotFilter{Mode: api.FilterMine}, nil
	case "jobids":
		return api.SnapshotFilter{Mode: api.FilterJobIDs, JobIDs: jobIDs}, nil
	default:
		return api.SnapshotFilter{}, fmt.Errorf("unknown --filter %q: want all, mine, or jobids", filterMode)
	}
}

func runPoller(cmd *cobra.Command, args []string) error {
	cfg := config.NewDefault()
	cfg.Load()
	if archivePath != "" {
		cfg.ArchivePath = archivePath
	}
	if pollInterval != "" {
		d, err := time.ParseDuration(pollInterval)
		if err != nil {
			return fmt.Errorf("--interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	if cfg.Debug {
		logCfg.Level = slog.LevelDebug
	}
	logger := logging.NewLogger(logCfg)

	executor, err := buildExecutor()
	if err != nil {
		return err
	}
	defer executor.Close()

	filter, err := buildFilter()
	if err != nil {
		return err
	}

	collector := metrics.NewInMemoryCollector()
	metrics.SetDefaultCollector(collector)

	fetcher := fetch.NewFetcher(executor, fetch.WithFetcherLogger(logger))
	writer := archive.NewWriter(archive.New(cfg.ArchivePath),
		archive.WithConcurrency(cfg.WorkerConcurrency),
		archive.WithLogger(logger),
		archive.WithMetrics(collector))

	eventBus := bus.New(bus.WithLogger(logger))

	timeouts := pipelinectx.DefaultTimeoutConfig()
	timeouts.Fetch = cfg.ExecTimeout

	poller := poll.New(fetcher, writer, poll.Options{
		Interval: cfg.PollInterval,
		Filter:   filter,
		Bus:      eventBus,
		Logger:   logger,
		Metrics:  collector,
		Timeouts: timeouts,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if listenAddr != "" {
		serveBus(ctx, eventBus, logger)
	}

	if err := poller.Start(ctx); err != nil {
		return err
	}

	logger.Info("squeue-poller started", "archive", cfg.ArchivePath, "interval", cfg.PollInterval.String())
	<-ctx.Done()
	poller.Stop()
	stats := collector.GetStats()
	logger.Info("squeue-poller stopped", "rounds", poller.Round(), "jobs_seen", stats.TotalJobsSeen, "deltas", stats.TotalDeltas)
	return nil
}

func serveBus(ctx context.Context, eventBus *bus.Bus, logger logging.Logger) {
	router := mux.NewRouter().StrictSlash(false)
	ws := bus.NewWebSocketServer(eventBus, bus.WithWSLogger(logger))
	sse := bus.NewSSEServer(eventBus, bus.WithSSELogger(logger))
	router.HandleFunc("/ws", ws.HandleWebSocket)
	router.HandleFunc("/events", sse.HandleSSE)

	server := &http.Server{Addr: listenAddr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("serving squeue-rows stream", "addr", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("squeue-rows http server failed", "error", err.Error())
		}
	}()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
