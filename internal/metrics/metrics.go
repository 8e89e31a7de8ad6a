package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"
)

type Metrics struct {
	Ticks          prometheus.Counter
	DatagramsSent  prometheus.Counter
	SendErrors     prometheus.Counter
	NMEASentences  *prometheus.CounterVec
	Temperature    prometheus.Gauge
	Pressure       prometheus.Gauge
	Humidity       prometheus.Gauge
	GPSFix         prometheus.Gauge
	GPSSatellites  prometheus.Gauge
	GPSHDOP        prometheus.Gauge
	GPSFixAge      prometheus.Gauge
	RelayReceived  *prometheus.CounterVec
	RelayPublished prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Ticks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "env_telemetry_ticks_total",
			Help: "Total number of sample loop iterations.",
		}),
		DatagramsSent: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "env_telemetry_datagrams_sent_total",
			Help: "Total number of telemetry datagrams written to the socket.",
		}),
		SendErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "env_telemetry_send_errors_total",
			Help: "Total number of failed datagram sends.",
		}),
		NMEASentences: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "env_telemetry_nmea_sentences_total",
			Help: "Complete NMEA lines seen, by sentence type and outcome.",
		}, []string{"type", "outcome"}),
		Temperature: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "env_telemetry_temperature_celsius",
			Help: "Last measured temperature.",
		}),
		Pressure: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "env_telemetry_pressure_hpa",
			Help: "Last measured atmospheric pressure hPa.",
		}),
		Humidity: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "env_telemetry_humidity_percent",
			Help: "Last measured relative humidity.",
		}),
		GPSFix: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "env_telemetry_gps_fix",
			Help: "1 when the last line carried a position, 0 otherwise.",
		}),
		GPSSatellites: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "env_telemetry_gps_satellites",
			Help: "Satellites in use from the last GGA sentence.",
		}),
		GPSHDOP: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "env_telemetry_gps_hdop",
			Help: "Horizontal dilution of precision from the last GGA sentence.",
		}),
		GPSFixAge: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "env_telemetry_gps_fix_age_seconds",
			Help: "Seconds since the position was last updated, -1 before the first fix.",
		}),
		RelayReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "env_telemetry_relay_datagrams_total",
			Help: "Datagrams received by the relay, by parse status.",
		}, []string{"status"}),
		RelayPublished: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "env_telemetry_relay_published_total",
			Help: "Readings published to the MQTT broker.",
		}),
	}
}

// Serve exposes reg on srv.Addr under /metrics. It blocks until the
// listener fails and returns nil once the server is shut down.
func Serve(srv *http.Server, reg prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv.Handler = mux

	logger.Infof("Starting metrics endpoint on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
