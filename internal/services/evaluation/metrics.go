package evaluation

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

// Metrics counts classified findings and failed saves. A nil *Metrics is a no-op.
type Metrics struct {
	findings     *prometheus.CounterVec
	saveFailures prometheus.Counter
	ingested     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "krishimitra",
			Name:      "findings_total",
			Help:      "Soil findings produced, by category and status.",
		}, []string{"category", "status"}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "krishimitra",
			Name:      "evaluation_save_failures_total",
			Help:      "Evaluation results that could not be stored.",
		}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "krishimitra",
			Name:      "sensor_readings_total",
			Help:      "Probe readings received over MQTT, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.findings, m.saveFailures, m.ingested)
	return m
}

func (m *Metrics) observe(findings []entities.Finding) {
	if m == nil {
		return
	}
	for _, f := range findings {
		m.findings.WithLabelValues(string(f.Category), string(f.Status)).Inc()
	}
}

func (m *Metrics) saveFailed() {
	if m == nil {
		return
	}
	m.saveFailures.Inc()
}

// outcome is one of processed, duplicate, rejected.
func (m *Metrics) reading(outcome string) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(outcome).Inc()
}
