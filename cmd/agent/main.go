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
	"github.com/relabs-tech/env_telemetry/internal/gps"
	"github.com/relabs-tech/env_telemetry/internal/metrics"
	"github.com/relabs-tech/env_telemetry/internal/sensors"
	"github.com/relabs-tech/env_telemetry/internal/udp"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	mock := flag.Bool("mock", false, "use a simulated environment sensor and no GPS")
	verbose := flag.Bool("verbose", false, "debug logging")
	ticks := flag.Int("ticks", -1, "stop after N lines (0 = run forever, -1 = use config)")
	flag.Parse()

	if *verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	logger.Info("starting env-telemetry agent (BME280 + GPS → UDP)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if *ticks >= 0 {
		cfg.Agent.MaxTicks = *ticks
	}
	if *mock {
		cfg.Sensor.Mock = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
	logger.Info("Exiting")
}

func run(ctx context.Context, cfg config.Config) error {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr}
		go func() {
			if err := metrics.Serve(srv, reg); err != nil {
				logger.Errorf("metrics endpoint: %v", err)
			}
		}()
		defer srv.Close()
	}

	var (
		sensor sensors.EnvReader
		port   app.Drainer
	)
	if cfg.Sensor.Mock {
		logger.Info("using mock environment sensor, GPS disabled")
		sensor = sensors.NewMockEnv()
	} else {
		bme, err := sensors.OpenBME280(sensors.BME280Config{Bus: cfg.Sensor.I2CBus, Address: cfg.Sensor.Address})
		if err != nil {
			return err
		}
		defer bme.Close()
		sensor = bme

		if p := openReceiver(cfg.GPS, gps.OpenPort); p != nil {
			defer p.Close()
			port = p
		}
	}

	sender, err := udp.NewSender(cfg.UDP.Dest, cfg.UDP.SendTimeout)
	if err != nil {
		return err
	}
	defer sender.Close()
	logger.Infof("sending telemetry to %s", sender.Dest())

	agent := app.NewAgent(sensor, port, sender, app.AgentOptions{
		Interval:            cfg.Agent.Interval,
		MaxTicks:            cfg.Agent.MaxTicks,
		ContinueOnSendError: cfg.UDP.ContinueOnSendError,
		Metrics:             m,
	})
	return agent.Run(ctx)
}

// openReceiver opens the GPS port. The receiver is optional: on failure the
// agent keeps sending with the no-fix coordinates.
func openReceiver(cfg config.GPSConfig, open func(gps.PortConfig) (*gps.Port, error)) *gps.Port {
	p, err := open(gps.PortConfig{
		Device:       cfg.Device,
		BaudRate:     cfg.BaudRate,
		MaxDrain:     cfg.MaxDrainBytes,
		MaxDrainTime: cfg.MaxDrainTime,
	})
	if err != nil {
		logger.Warnf("GPS disabled: %v", err)
		return nil
	}
	return p
}
