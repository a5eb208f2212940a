package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using the Prometheus client.
// Registration errors are logged but never propagated.
type PrometheusRecorder struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryResults  *prometheus.HistogramVec
}

// NewPrometheusRecorder creates the query collectors and registers them on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rocketminer_queries_total",
			Help: "Total analytics queries, partitioned by query and outcome.",
		}, []string{"query", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rocketminer_query_duration_seconds",
			Help:    "Query latency in seconds, store load included.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"query"}),
		queryResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rocketminer_query_results",
			Help:    "Number of items returned by successful queries.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
		}, []string{"query"}),
	}

	register(reg, r.queriesTotal, "rocketminer_queries_total")
	register(reg, r.queryDuration, "rocketminer_query_duration_seconds")
	register(reg, r.queryResults, "rocketminer_query_results")
	return r
}

func register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		slog.Warn("metrics: failed to register collector", "name", name, "error", err)
	}
}

func (r *PrometheusRecorder) QueryCompleted(query string, d time.Duration, results int, err error) {
	r.queriesTotal.WithLabelValues(query, Classify(err)).Inc()
	r.queryDuration.WithLabelValues(query).Observe(d.Seconds())
	if err == nil {
		r.queryResults.WithLabelValues(query).Observe(float64(results))
	}
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
