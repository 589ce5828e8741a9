// Package metrics records generation and validation counters.
//
// A nil *Recorder is valid and records nothing, so components take one
// without checking whether metrics are enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/sintology/ontology"
)

const namespace = "sintology"

// Result label values.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

// Recorder owns a private registry with the sintology collectors.
type Recorder struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	duration    prometheus.Histogram
	classes     prometheus.Gauge
	properties  *prometheus.GaugeVec
	validated   *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Ontology generation runs by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating ontology artifacts.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		classes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_classes",
			Help:      "Classes in the last generated model.",
		}),
		properties: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_properties",
			Help:      "Properties in the last generated model by kind.",
		}, []string{"kind"}),
		validated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validated_instances_total",
			Help:      "Validated nodes and edges by result.",
		}, []string{"kind", "result"}),
	}
	r.registry.MustRegister(r.generations, r.duration, r.classes, r.properties, r.validated)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveGeneration records one generation run.
func (r *Recorder) ObserveGeneration(d time.Duration, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	r.generations.WithLabelValues(result).Inc()
	r.duration.Observe(d.Seconds())
}

// ObserveModel sets the model size gauges.
func (r *Recorder) ObserveModel(m *ontology.Model) {
	if r == nil || m == nil {
		return
	}
	counts := map[ontology.Kind]int{ontology.KindDatatype: 0, ontology.KindObject: 0}
	for _, p := range m.Properties() {
		counts[p.Kind]++
	}
	r.classes.Set(float64(len(m.Classes())))
	for kind, n := range counts {
		r.properties.WithLabelValues(string(kind)).Set(float64(n))
	}
}

// ObserveValidation records one validated node or edge.
func (r *Recorder) ObserveValidation(kind string, accepted bool) {
	if r == nil {
		return
	}
	result := ResultAccepted
	if !accepted {
		result = ResultRejected
	}
	r.validated.WithLabelValues(kind, result).Inc()
}

// WriteTextfile writes the current values in the Prometheus text format,
// for collection by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
