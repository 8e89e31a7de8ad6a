// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_telemetry/internal/app"
	"github.com/relabs-tech/env_telemetry/internal/config"
	"github.com/relabs-tech/env_telemetry/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	if *verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	logger.Info("starting env-telemetry relay (UDP → MQTT + HTTP)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr}
		go func() {
			if err := metrics.Serve(srv, reg); err != nil {
				logger.Errorf("metrics endpoint: %v", err)
			}
		}()
		defer srv.Close()
	}

	if err := app.RunRelay(ctx, cfg, metrics.NewMetrics(reg)); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}
