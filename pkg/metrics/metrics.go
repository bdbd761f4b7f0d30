package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all ldapwatch collectors. Served over HTTP in watch mode.
var Registry = prometheus.NewRegistry()

var (
	// RunsTotal is the total number of pipeline runs, by outcome.
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ldapwatch",
			Name:      "runs_total",
			Help:      "Pipeline runs, by outcome (success, noop, error).",
		},
		[]string{"result"},
	)

	// LinesReadTotal is the total number of raw log lines consumed.
	LinesReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ldapwatch",
			Name:      "lines_read_total",
			Help:      "Raw audit log lines consumed.",
		},
	)

	// RecordsParsedTotal is the total number of completed change records.
	RecordsParsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ldapwatch",
			Name:      "records_parsed_total",
			Help:      "Completed change records parsed, by change type.",
		},
		[]string{"changetype"},
	)

	// EventsDeliveredTotal is the total number of sink deliveries.
	EventsDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ldapwatch",
			Name:      "events_delivered_total",
			Help:      "Events handed to the sink, by result.",
		},
		[]string{"sink", "result"},
	)

	// RotationsDetectedTotal is the total number of rotation resumptions.
	RotationsDetectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ldapwatch",
			Name:      "rotations_detected_total",
			Help:      "Runs that resumed from a rotated predecessor file.",
		},
	)

	// RunDurationSeconds is the end-to-end latency per run.
	RunDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ldapwatch",
			Name:      "run_duration_seconds",
			Help:      "End-to-end pipeline latency per run.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// CheckpointOffsetBytes is the last committed byte offset.
	CheckpointOffsetBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ldapwatch",
			Name:      "checkpoint_offset_bytes",
			Help:      "Byte offset of the last committed cursor position.",
		},
	)
)

func init() {
	Registry.MustRegister(
		RunsTotal,
		LinesReadTotal,
		RecordsParsedTotal,
		EventsDeliveredTotal,
		RotationsDetectedTotal,
		RunDurationSeconds,
		CheckpointOffsetBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
