package metrics

import "github.com/prometheus/client_golang/prometheus"

// AlertMetrics instrumentos Prometheus del motor de alertas.
type AlertMetrics struct {
	BatchesTotal      prometheus.Counter
	ProductsEvaluated prometheus.Counter
	AlertsEmitted     prometheus.Counter
	FaultsTotal       *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
}

// New crea y registra los instrumentos en el Registerer indicado
// (en tests se pasa un prometheus.NewRegistry() aislado).
func New(reg prometheus.Registerer) *AlertMetrics {
	m := &AlertMetrics{
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_alert_batches_total",
			Help: "Total de lotes de alertas calculados",
		}),
		ProductsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_alert_products_evaluated_total",
			Help: "Total de productos evaluados en lotes de alertas",
		}),
		AlertsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_alerts_emitted_total",
			Help: "Total de alertas de reorden emitidas",
		}),
		FaultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockflow_alert_faults_total",
			Help: "Faults por producto durante el cálculo de alertas",
		}, []string{"kind"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockflow_alert_batch_duration_seconds",
			Help:    "Duración del cálculo de un lote de alertas",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.BatchesTotal, m.ProductsEvaluated, m.AlertsEmitted, m.FaultsTotal, m.BatchDuration)
	return m
}
