package main

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/env_telemetry/internal/config"
	"github.com/relabs-tech/env_telemetry/internal/gps"
)

func TestOpenReceiver_FailureDisablesGPS(t *testing.T) {
	open := func(gps.PortConfig) (*gps.Port, error) {
		return nil, errors.New("open /dev/serial0: no such file or directory")
	}
	assert.Nil(t, openReceiver(config.Default().GPS, open))
}

func TestOpenReceiver_PassesConfig(t *testing.T) {
	cfg := config.Default().GPS
	cfg.Device = "/dev/ttyUSB0"
	cfg.MaxDrainTime = 100 * time.Millisecond

	var got gps.PortConfig
	want := gps.NewPort(io.NopCloser(strings.NewReader("")), 0)
	open := func(pc gps.PortConfig) (*gps.Port, error) {
		got = pc
		return want, nil
	}

	p := openReceiver(cfg, open)
	require.Same(t, want, p)
	assert.Equal(t, gps.PortConfig{
		Device:       "/dev/ttyUSB0",
		BaudRate:     9600,
		MaxDrain:     4096,
		MaxDrainTime: 100 * time.Millisecond,
	}, got)
}
