package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the recommendation pipeline.
type AssistantMetrics struct {
	pipelineTotal   *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
	fallbackTotal   prometheus.Counter
	candidates      prometheus.Histogram
	modelLatency    *prometheus.HistogramVec
	transitionTotal *prometheus.CounterVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		pipelineTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esil",
			Subsystem: "assistant",
			Name:      "pipeline_total",
			Help:      "Recommendation pipeline runs by outcome",
		}, []string{"outcome"}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esil",
			Subsystem: "assistant",
			Name:      "dropped_suggestions_total",
			Help:      "Model suggestions discarded by the validator",
		}, []string{"reason"}),
		fallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "esil",
			Subsystem: "assistant",
			Name:      "catalog_fallback_total",
			Help:      "Catalog queries that fell back to the availability-only filter",
		}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "esil",
			Subsystem: "assistant",
			Name:      "candidate_set_size",
			Help:      "Number of catalog candidates sent to the model",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "esil",
			Subsystem: "assistant",
			Name:      "model_latency_seconds",
			Help:      "Latency of generative model calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		transitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esil",
			Subsystem: "assistant",
			Name:      "state_transitions_total",
			Help:      "Conversation state transitions",
		}, []string{"to"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.pipelineTotal, m.droppedTotal, m.fallbackTotal, m.candidates, m.modelLatency, m.transitionTotal)
	return m
}

func (m *AssistantMetrics) ObservePipeline(outcome string) {
	if m == nil {
		return
	}
	m.pipelineTotal.WithLabelValues(outcome).Inc()
}

func (m *AssistantMetrics) ObserveDropped(reason string) {
	if m == nil {
		return
	}
	m.droppedTotal.WithLabelValues(reason).Inc()
}

func (m *AssistantMetrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

func (m *AssistantMetrics) ObserveCandidates(n int) {
	if m == nil {
		return
	}
	m.candidates.Observe(float64(n))
}

func (m *AssistantMetrics) ObserveModelLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(status).Observe(seconds)
}

func (m *AssistantMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(to).Inc()
}
