package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_telemetry/internal/config"
	"github.com/relabs-tech/env_telemetry/internal/metrics"
	"github.com/relabs-tech/env_telemetry/internal/telemetry"
)

// maxDatagram is larger than any line the agent produces.
const maxDatagram = 2048

// RelayMessage is the JSON document published for every received line.
type RelayMessage struct {
	telemetry.Reading
	From       string    `json:"from"`
	ReceivedAt time.Time `json:"received_at"`
}

// Relay receives telemetry datagrams, publishes them to MQTT and keeps the
// latest one for the HTTP API.
type Relay struct {
	pub     Publisher
	topic   string
	metrics *metrics.Metrics
	now     func() time.Time

	mu   sync.RWMutex
	last RelayMessage
	have bool
}

func NewRelay(pub Publisher, topic string, m *metrics.Metrics) *Relay {
	return &Relay{pub: pub, topic: topic, metrics: m, now: time.Now}
}

// HandleDatagram parses one line and forwards it. Lines that do not parse
// are dropped with an error.
func (r *Relay) HandleDatagram(payload []byte, from string) error {
	logger.Infof("received: %s", payload)

	reading, err := telemetry.Parse(string(payload))
	if err != nil {
		r.count("invalid")
		return fmt.Errorf("from %s: %w", from, err)
	}
	r.count("ok")

	msg := RelayMessage{Reading: reading, From: from, ReceivedAt: r.now().UTC()}
	r.mu.Lock()
	r.last = msg
	r.have = true
	r.mu.Unlock()

	if r.pub == nil {
		return nil
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("relay json marshal: %w", err)
	}
	if err := r.pub.Publish(r.topic, body); err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.RelayPublished.Inc()
	}
	return nil
}

func (r *Relay) count(status string) {
	if r.metrics != nil {
		r.metrics.RelayReceived.WithLabelValues(status).Inc()
	}
}

// Latest returns the last successfully parsed message.
func (r *Relay) Latest() (RelayMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.have
}

// Serve reads datagrams from conn until ctx is cancelled. conn is closed on
// return.
func (r *Relay) Serve(ctx context.Context, conn net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	buf := make([]byte, maxDatagram)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("relay read: %w", err)
		}
		from := ""
		if addr != nil {
			from = addr.String()
		}
		if err := r.HandleDatagram(buf[:n], from); err != nil {
			logger.Warnf("relay: %v", err)
		}
	}
}

// RunRelay wires the relay to MQTT, the UDP listener and the HTTP API and
// runs until ctx is cancelled.
func RunRelay(ctx context.Context, cfg config.Config, m *metrics.Metrics) error {
	client, err := connectMQTT(cfg.Relay.MQTT.Broker, cfg.Relay.MQTT.ClientID)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	relay := NewRelay(mqttPublisher{client: client}, cfg.Relay.MQTT.Topic, m)

	conn, err := net.ListenPacket("udp", cfg.Relay.Listen)
	if err != nil {
		return fmt.Errorf("relay listen %s: %w", cfg.Relay.Listen, err)
	}
	logger.Infof("waiting for UDP telemetry on %s", conn.LocalAddr())

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{Addr: cfg.Relay.HTTPAddr, Handler: relay.Handler()}
	httpFailed := make(chan error, 1)
	go func() {
		logger.Infof("web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpFailed <- err
			cancel()
		}
	}()

	err = relay.Serve(serveCtx, conn)

	shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	_ = srv.Shutdown(shutdownCtx)

	select {
	case herr := <-httpFailed:
		return fmt.Errorf("web server: %w", herr)
	default:
	}
	return err
}
