package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_telemetry/internal/app"
	"github.com/relabs-tech/env_telemetry/internal/config"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	flag.Parse()

	logger.Info("starting env-telemetry console (MQTT subscriber)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsoleMQTT(ctx, cfg, os.Stdout); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}
