// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_telemetry/internal/app"
)

func main() {
	interval := flag.Duration("interval", time.Second, "time between lines")
	ticks := flag.Int("ticks", 0, "stop after N lines (0 = run forever)")
	flag.Parse()

	logger.Info("starting env-telemetry (mock console)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMockConsole(ctx, os.Stdout, *interval, *ticks); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}
