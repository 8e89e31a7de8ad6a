package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefault_FixedConstants(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0:5005", cfg.UDP.Dest)
	assert.Equal(t, time.Second, cfg.Agent.Interval)
	assert.Equal(t, 0, cfg.Agent.MaxTicks)
	assert.False(t, cfg.UDP.ContinueOnSendError)
	assert.Equal(t, time.Duration(0), cfg.UDP.SendTimeout)
	assert.Equal(t, "/dev/serial0", cfg.GPS.Device)
	assert.Equal(t, 9600, cfg.GPS.BaudRate)
	assert.Equal(t, 4096, cfg.GPS.MaxDrainBytes)
	assert.Equal(t, 250*time.Millisecond, cfg.GPS.MaxDrainTime)
	assert.Equal(t, "", cfg.Sensor.I2CBus)
	assert.Equal(t, uint16(0x76), cfg.Sensor.Address)
	assert.Equal(t, "", cfg.Metrics.Addr)
	require.NoError(t, cfg.validate())
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeTempConfig(t, `
agent:
  interval: 250ms
udp:
  dest: "192.168.1.20:6000"
  continue_on_send_error: true
  send_timeout: 50ms
sensor:
  address: 0x77
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Agent.Interval)
	assert.Equal(t, "192.168.1.20:6000", cfg.UDP.Dest)
	assert.True(t, cfg.UDP.ContinueOnSendError)
	assert.Equal(t, 50*time.Millisecond, cfg.UDP.SendTimeout)
	assert.Equal(t, uint16(0x77), cfg.Sensor.Address)
	assert.Equal(t, "/dev/serial0", cfg.GPS.Device)
	assert.Equal(t, 9600, cfg.GPS.BaudRate)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"agent:\n  interval: 0s\n":          "agent.interval must be positive, got 0s",
		"agent:\n  max_ticks: -1\n":         "agent.max_ticks must be >= 0, got -1",
		"udp:\n  dest: \"\"\n":              "udp.dest is required",
		"gps:\n  baud_rate: 0\n":            "gps.baud_rate must be positive, got 0",
		"gps:\n  max_drain_bytes: -5\n":     "gps.max_drain_bytes must be positive, got -5",
		"gps:\n  max_drain_time: 0s\n":    "gps.max_drain_time must be positive, got 0s",
		"sensor:\n  address: 0x40\n":        "sensor.address must be 0x76 or 0x77, got 0x40",
		"relay:\n  mqtt:\n    topic: \"\"\n": "relay.mqtt.topic is required",
	}
	for contents, want := range cases {
		_, err := Load(writeTempConfig(t, contents))
		require.Error(t, err, contents)
		assert.Equal(t, want, err.Error(), contents)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	_, err := Load(writeTempConfig(t, "udp:\n  destination: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
