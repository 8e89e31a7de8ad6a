package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	logger "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_telemetry/internal/config"
)

// RunConsoleMQTT prints every reading the relay publishes until ctx is
// cancelled.
func RunConsoleMQTT(ctx context.Context, cfg config.Config, out io.Writer) error {
	client, err := connectMQTT(cfg.Relay.MQTT.Broker, cfg.Console.ClientID)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	topic := cfg.Relay.MQTT.Topic
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line, err := consoleLine(msg.Payload())
		if err != nil {
			logger.Errorf("console: telemetry unmarshal error: %v", err)
			return
		}
		fmt.Fprintln(out, line)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	logger.Infof("console: subscribed to %s", topic)

	<-ctx.Done()
	logger.Info("console: shutting down")
	return nil
}

func consoleLine(payload []byte) (string, error) {
	var m RelayMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", err
	}
	fix := "no fix"
	if m.HasPosition() {
		fix = fmt.Sprintf("lat=%.6f lon=%.6f", m.Latitude, m.Longitude)
	}
	return fmt.Sprintf(
		"[ENV ]  %s  T=%6.2f°C  P=%7.2fhPa  RH=%5.1f%%  %s",
		m.ReceivedAt.Format("15:04:05"), m.Temperature, m.Pressure, m.Humidity, fix,
	), nil
}
