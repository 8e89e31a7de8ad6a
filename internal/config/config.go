// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values. Every field has a
// default, so an empty or missing file is a valid configuration.
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	UDP     UDPConfig     `yaml:"udp"`
	GPS     GPSConfig     `yaml:"gps"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Metrics MetricsConfig `yaml:"metrics"`
	Relay   RelayConfig   `yaml:"relay"`
	Console ConsoleConfig `yaml:"console"`
}

type AgentConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxTicks int           `yaml:"max_ticks"` // 0 = run until stopped
}

type UDPConfig struct {
	Dest                string        `yaml:"dest"`
	SendTimeout         time.Duration `yaml:"send_timeout"` // 0 = no deadline
	ContinueOnSendError bool          `yaml:"continue_on_send_error"`
}

type GPSConfig struct {
	Device        string        `yaml:"device"`
	BaudRate      int           `yaml:"baud_rate"`
	MaxDrainBytes int           `yaml:"max_drain_bytes"`
	MaxDrainTime  time.Duration `yaml:"max_drain_time"`
}

type SensorConfig struct {
	I2CBus  string `yaml:"i2c_bus"` // "" = first available bus
	Address uint16 `yaml:"address"`
	Mock    bool   `yaml:"mock"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // "" disables the endpoint
}

type RelayConfig struct {
	Listen   string     `yaml:"listen"`
	HTTPAddr string     `yaml:"http_addr"`
	MQTT     MQTTConfig `yaml:"mqtt"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

type ConsoleConfig struct {
	ClientID string `yaml:"client_id"`
}

// Default returns the fixed values the agent runs with when no file is given.
func Default() Config {
	return Config{
		Agent: AgentConfig{Interval: time.Second},
		UDP:   UDPConfig{Dest: "0.0.0.0:5005"},
		GPS: GPSConfig{
			Device:        "/dev/serial0",
			BaudRate:      9600,
			MaxDrainBytes: 4096,
			MaxDrainTime:  250 * time.Millisecond,
		},
		Sensor: SensorConfig{Address: 0x76},
		Relay: RelayConfig{
			Listen:   ":5005",
			HTTPAddr: ":8080",
			MQTT: MQTTConfig{
				Broker:   "tcp://localhost:1883",
				ClientID: "env-telemetry-relay",
				Topic:    "env/telemetry",
			},
		},
		Console: ConsoleConfig{ClientID: "env-telemetry-console"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks required fields and ranges.
func (c *Config) validate() error {
	if c.Agent.Interval <= 0 {
		return fmt.Errorf("agent.interval must be positive, got %s", c.Agent.Interval)
	}
	if c.Agent.MaxTicks < 0 {
		return fmt.Errorf("agent.max_ticks must be >= 0, got %d", c.Agent.MaxTicks)
	}
	if c.UDP.Dest == "" {
		return fmt.Errorf("udp.dest is required")
	}
	if c.UDP.SendTimeout < 0 {
		return fmt.Errorf("udp.send_timeout must be >= 0, got %s", c.UDP.SendTimeout)
	}
	if c.GPS.Device == "" {
		return fmt.Errorf("gps.device is required")
	}
	if c.GPS.BaudRate <= 0 {
		return fmt.Errorf("gps.baud_rate must be positive, got %d", c.GPS.BaudRate)
	}
	if c.GPS.MaxDrainBytes <= 0 {
		return fmt.Errorf("gps.max_drain_bytes must be positive, got %d", c.GPS.MaxDrainBytes)
	}
	if c.GPS.MaxDrainTime <= 0 {
		return fmt.Errorf("gps.max_drain_time must be positive, got %s", c.GPS.MaxDrainTime)
	}
	if c.Sensor.Address != 0x76 && c.Sensor.Address != 0x77 {
		return fmt.Errorf("sensor.address must be 0x76 or 0x77, got %#x", c.Sensor.Address)
	}
	if c.Relay.MQTT.Topic == "" {
		return fmt.Errorf("relay.mqtt.topic is required")
	}
	return nil
}
