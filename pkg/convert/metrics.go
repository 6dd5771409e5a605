// ABOUTME: Prometheus metrics for conversion sessions
// ABOUTME: Counters and histograms labelled by codec, nil-safe to record
package convert

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics shared by all engines that are
// given the same instance. A nil *Metrics records nothing.
type Metrics struct {
	PacketsSubmitted   *prometheus.CounterVec
	PacketsConverted   *prometheus.CounterVec
	DroppedSubmissions *prometheus.CounterVec
	CodecErrors        *prometheus.CounterVec
	BytesOut           *prometheus.CounterVec
	ActiveSessions     *prometheus.GaugeVec
	EncodeDuration     *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	labels := []string{"codec"}

	return &Metrics{
		PacketsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audiokit_packets_submitted_total",
			Help: "Total number of PCM packets accepted for conversion",
		}, labels),
		PacketsConverted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audiokit_packets_converted_total",
			Help: "Total number of PCM packets converted or failed",
		}, labels),
		DroppedSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audiokit_dropped_submissions_total",
			Help: "Total number of submissions dropped because a stop was requested",
		}, labels),
		CodecErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audiokit_codec_errors_total",
			Help: "Total number of codec failures reported",
		}, labels),
		BytesOut: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audiokit_output_bytes_total",
			Help: "Total number of encoded bytes delivered",
		}, labels),
		ActiveSessions: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "audiokit_active_sessions",
			Help: "Current number of conversion sessions that have not stopped",
		}, labels),
		EncodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audiokit_encode_duration_seconds",
			Help:    "Time spent encoding one chunk",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100us to ~400ms
		}, labels),
	}
}

func (m *Metrics) sessionStarted(codec string) {
	if m == nil {
		return
	}
	m.ActiveSessions.WithLabelValues(codec).Inc()
}

func (m *Metrics) sessionEnded(codec string) {
	if m == nil {
		return
	}
	m.ActiveSessions.WithLabelValues(codec).Dec()
}

func (m *Metrics) submitted(codec string, packets int) {
	if m == nil {
		return
	}
	m.PacketsSubmitted.WithLabelValues(codec).Add(float64(packets))
}

func (m *Metrics) dropped(codec string) {
	if m == nil {
		return
	}
	m.DroppedSubmissions.WithLabelValues(codec).Inc()
}

func (m *Metrics) converted(codec string, packets, outBytes int, took time.Duration) {
	if m == nil {
		return
	}
	m.PacketsConverted.WithLabelValues(codec).Add(float64(packets))
	m.BytesOut.WithLabelValues(codec).Add(float64(outBytes))
	m.EncodeDuration.WithLabelValues(codec).Observe(took.Seconds())
}

func (m *Metrics) codecError(codec string) {
	if m == nil {
		return
	}
	m.CodecErrors.WithLabelValues(codec).Inc()
}
