// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_telemetry/internal/env"
	"github.com/relabs-tech/env_telemetry/internal/gps"
	"github.com/relabs-tech/env_telemetry/internal/metrics"
	"github.com/relabs-tech/env_telemetry/internal/sensors"
	"github.com/relabs-tech/env_telemetry/internal/telemetry"
)

// Drainer copies whatever GPS bytes are available into w without waiting.
type Drainer interface {
	DrainTo(w io.Writer) (int, error)
}

// Transmitter sends one telemetry line.
type Transmitter interface {
	Send(payload []byte) error
}

// AgentOptions tunes the sample loop. Zero values fall back to a one
// second interval on the real clock.
type AgentOptions struct {
	Interval            time.Duration
	MaxTicks            int // 0 = until cancelled
	ContinueOnSendError bool
	Clock               clockwork.Clock
	Metrics             *metrics.Metrics
}

// Agent samples the environment sensor and the GPS, and sends one line per
// interval.
type Agent struct {
	sensor sensors.EnvReader
	port   Drainer // nil when no receiver is attached
	fix    *gps.Accumulator
	sender Transmitter
	opts   AgentOptions
}

func NewAgent(sensor sensors.EnvReader, port Drainer, sender Transmitter, opts AgentOptions) *Agent {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	fix := gps.NewAccumulatorClock(opts.Clock.Now)
	if m := opts.Metrics; m != nil {
		fix.OnSentence = func(typ, outcome string) {
			m.NMEASentences.WithLabelValues(typ, outcome).Inc()
		}
	}

	return &Agent{
		sensor: sensor,
		port:   port,
		fix:    fix,
		sender: sender,
		opts:   opts,
	}
}

// Tick runs one iteration and returns the line it sent. Sensor faults are
// always returned. Send faults are returned unless ContinueOnSendError is
// set, in which case they are logged and counted.
func (a *Agent) Tick(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m, err := a.sensor.Read()
	if err != nil {
		return "", fmt.Errorf("read sensor: %w", err)
	}

	if a.port != nil {
		if _, err := a.port.DrainTo(a.fix); err != nil {
			// the last known position is kept; the receiver may come back
			logger.Warnf("GPS drain error: %v", err)
		}
	}

	snap := a.fix.Snapshot()
	logger.Debugf("gps fix: %+v stats: %+v", snap, a.fix.Stats())

	var latP, lonP *string
	if lat, ok := gps.Convert(snap.Latitude); ok {
		latP = &lat
	}
	if lon, ok := gps.Convert(snap.Longitude); ok {
		lonP = &lon
	}
	line := telemetry.Format(m, latP, lonP)

	a.observe(m, snap)

	if err := a.sender.Send([]byte(line)); err != nil {
		if a.opts.Metrics != nil {
			a.opts.Metrics.SendErrors.Inc()
		}
		if !a.opts.ContinueOnSendError {
			return line, err
		}
		logger.Errorf("dropped telemetry line: %v", err)
		return line, nil
	}
	if a.opts.Metrics != nil {
		a.opts.Metrics.DatagramsSent.Inc()
	}

	logger.Infof("sent: %s", line)
	return line, nil
}

func (a *Agent) observe(reading env.Measurement, fix gps.Fix) {
	m := a.opts.Metrics
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.Temperature.Set(reading.Temperature)
	m.Pressure.Set(reading.Pressure)
	m.Humidity.Set(reading.Humidity)

	if fix.HasPosition() {
		m.GPSFix.Set(1)
	} else {
		m.GPSFix.Set(0)
	}
	m.GPSSatellites.Set(float64(fix.Satellites))
	m.GPSHDOP.Set(fix.HDOP)
	if fix.UpdatedAt.IsZero() {
		m.GPSFixAge.Set(-1)
	} else {
		m.GPSFixAge.Set(a.opts.Clock.Since(fix.UpdatedAt).Seconds())
	}
}

// Run ticks until ctx is cancelled, MaxTicks is reached or a tick fails.
// Cancellation is not an error.
func (a *Agent) Run(ctx context.Context) error {
	logger.Infof("Starting sample loop, interval %s", a.opts.Interval)

	for ticks := 0; ; {
		if ctx.Err() != nil {
			logger.Info("sample loop stopped")
			return nil
		}

		if _, err := a.Tick(ctx); err != nil {
			return err
		}

		ticks++
		if a.opts.MaxTicks > 0 && ticks >= a.opts.MaxTicks {
			logger.Infof("sample loop done after %d ticks", ticks)
			return nil
		}

		select {
		case <-ctx.Done():
			logger.Info("sample loop stopped")
			return nil
		case <-a.opts.Clock.After(a.opts.Interval):
		}
	}
}
