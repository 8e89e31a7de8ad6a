// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/env_telemetry/internal/sensors"
)

// writerTransmitter prints each line instead of sending it.
type writerTransmitter struct {
	w io.Writer
}

func (t writerTransmitter) Send(payload []byte) error {
	_, err := fmt.Fprintf(t.w, "%s\n", payload)
	return err
}

// RunMockConsole runs the sample loop against the mock sensor and prints
// the lines to out. Nothing goes on the network.
func RunMockConsole(ctx context.Context, out io.Writer, interval time.Duration, maxTicks int) error {
	agent := NewAgent(sensors.NewMockEnv(), nil, writerTransmitter{w: out}, AgentOptions{
		Interval: interval,
		MaxTicks: maxTicks,
	})
	return agent.Run(ctx)
}
