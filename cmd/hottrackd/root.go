// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is hottrackd: a small standalone harness that starts a
// tracker Root, replays a synthetic I/O trace against it, and serves its
// OTel metrics over Prometheus so the rest of the domain stack
// (temperature histograms, eviction counters, aging latency) can be
// observed without embedding this package into a real file system.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/googlecloudplatform/hottrackfs/cfg"
	"github.com/googlecloudplatform/hottrackfs/internal/hottrack"
	"github.com/googlecloudplatform/hottrackfs/internal/logger"
	"github.com/googlecloudplatform/hottrackfs/internal/pressure"
)

var (
	bindErr       error
	cfgFile       string
	configFileErr error
)

var rootCmd = &cobra.Command{
	Use:   "hottrackd",
	Short: "Run a standalone hot-tracking daemon for replay and metrics inspection",
	Long: `hottrackd starts an in-memory access-frequency tracker, replays a small
synthetic read/write trace against it, and exposes its metrics over
Prometheus until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		return run()
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file overriding the tracker's defaults.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

// initConfig loads --config-file into viper, if one was given, before any
// flag or RunE logic reads tunables out of it.
func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("read config file %q: %w", cfgFile, err)
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger.Init(logger.Config{
		Severity: viper.GetString(cfg.KeyLogSeverity),
		Format:   viper.GetString(cfg.KeyLogFormat),
		FilePath: viper.GetString(cfg.KeyLogFilePath),
	})

	if effective, err := cfg.EffectiveYAML(viper.GetViper()); err != nil {
		logger.Warnf("hottrackd: could not render effective config: %v", err)
	} else {
		logger.Debugf("hottrackd: effective config:\n%s", effective)
	}

	exporter, err := otelprometheus.New()
	if err != nil {
		return fmt.Errorf("new prometheus exporter: %w", err)
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	// RecordIO/AgingTick spans are otherwise swallowed by the global
	// no-op TracerProvider: install a stdout exporter here so the
	// daemon's harness trace is visible for diagnostics, the way a real
	// mount would instead wire an OTLP exporter.
	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("new stdout trace exporter: %w", err)
	}
	traceProvider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	defer func() { _ = traceProvider.Shutdown(context.Background()) }()
	otel.SetTracerProvider(traceProvider)

	root, err := hottrack.Init(hottrack.Options{
		VolumeID: viper.GetString(cfg.KeyVolumeName),
		Tunables: cfg.NewTunables(viper.GetViper()),
	})
	if err != nil {
		return fmt.Errorf("init tracker: %w", err)
	}
	defer root.Teardown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := &pressure.Watcher{
		StallMicros:  150_000,
		WindowMicros: 1_000_000,
		BatchSize:    64,
		Shrink:       root.ShrinkerScan,
	}
	go watcher.Run(ctx)

	go replayDemoTrace(root)

	addr := viper.GetString(cfg.KeyMetricsAddr)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Infof("hottrackd: serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("hottrackd: metrics server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	return nil
}

// replayDemoTrace generates a small synthetic, skewed-popularity
// read/write workload so a freshly started daemon has something for its
// temperature histograms to show. Real embedders call Root.RecordIO
// directly from their own I/O path instead of this.
func replayDemoTrace(root *hottrack.Root) {
	const hotInode, coldInode = 1, 2
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	tick := 0
	for range ticker.C {
		root.RecordIO(hotInode, true, 0, 4096, false)
		if tick%10 == 0 {
			root.RecordIO(coldInode, true, 0, 4096, true)
		}
		tick++
	}
}
