package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the refresh job.
type Metrics struct {
	FetchRequests *prometheus.CounterVec   // labels: source={geo,worldbank,eonet,usgs}, outcome={success,error,canceled}
	FetchDuration *prometheus.HistogramVec // labels: source
	IndicatorSize *prometheus.GaugeVec     // labels: indicator

	Countries *prometheus.GaugeVec // labels: outcome={updated,preserved,missing}
	Events    *prometheus.GaugeVec // labels: feed={eonet,usgs}

	Runs          *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration   prometheus.Histogram
	LastSuccess   prometheus.Gauge
	ArtifactBytes prometheus.Gauge
	PublishErrors prometheus.Counter
}

const namespace = "orbis_refresh"

// NewMetrics creates and registers all job metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.IndicatorSize,
		m.Countries,
		m.Events,
		m.Runs,
		m.RunDuration,
		m.LastSuccess,
		m.ArtifactBytes,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Upstream fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		IndicatorSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indicator_countries",
			Help:      "Countries with a value for each indicator in the last run.",
		}, []string{"indicator"}),
		Countries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "countries",
			Help:      "Countries by aggregation outcome in the last run.",
		}, []string{"outcome"}),
		Events: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events",
			Help:      "Hazard events written in the last run, by feed.",
		}, []string{"feed"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed refresh runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete refresh run.",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 120, 300},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		ArtifactBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of the last written artifact.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publications of country records.",
		}),
	}
}

// WriteTextfile writes the default registry in the node_exporter textfile
// collector format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
