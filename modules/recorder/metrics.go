package recorder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "radiorec"

var (
	metricCapturedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "captured_bytes_total",
		Help:      "Bytes written to the spool, by station.",
	}, []string{"station"})

	metricRecordings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "recordings_total",
		Help:      "Finished recording attempts, by result.",
	}, []string{"result"})

	metricStageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "stage_failures_total",
		Help:      "Recording failures, by the pipeline state that failed.",
	}, []string{"state"})

	metricCaptureSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_capture_duration_seconds",
		Help:      "Wall-clock length of the most recent capture.",
	})
)
