// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/env_telemetry/internal/env"
)

type mockEnv struct {
	start time.Time
	now   func() time.Time
}

// NewMockEnv creates a mock environment sensor that generates smoothly
// changing values around a mild indoor climate.
func NewMockEnv() EnvReader {
	return &mockEnv{start: time.Now(), now: time.Now}
}

func (m *mockEnv) Read() (env.Measurement, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	return env.Measurement{
		Temperature: round2(22.5 + 1.5*math.Sin(elapsed/60)),
		Pressure:    round2(1013.2 + 0.8*math.Cos(elapsed/300)),
		Humidity:    round2(45 + 5*math.Sin(elapsed/120)),
	}, nil
}
