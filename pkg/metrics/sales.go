package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Resultados de un intento de confirmar venta.
const (
	OutcomeCommitted = "committed"
	OutcomeReplayed  = "replayed" // client_ref ya confirmado
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "not_found"
	OutcomeBusy      = "busy"
	OutcomeIntegrity = "integrity"
	OutcomeError     = "error"
)

// SaleMetrics métricas del motor de ventas.
type SaleMetrics struct {
	duration *prometheus.HistogramVec
	commits  *prometheus.CounterVec
	retries  prometheus.Counter
	amount   prometheus.Counter
}

// NewSaleMetrics registra las métricas de ventas en el registerer dado.
// Con reg nil devuelve un recolector inerte.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_sale_commit_duration_seconds",
		Help:    "Duration of sale commits in seconds, including busy retries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sale_commits_total",
		Help: "Sale commit attempts by outcome.",
	}, []string{"outcome"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_sale_busy_retries_total",
		Help: "Sale commit attempts that found the store busy.",
	})
	amount := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_sale_amount_total",
		Help: "Sum of committed sale totals.",
	})
	reg.MustRegister(duration, commits, retries, amount)
	return &SaleMetrics{
		duration: duration,
		commits:  commits,
		retries:  retries,
		amount:   amount,
	}
}

// ObserveCommit registra un intento de confirmación con su resultado y duración.
func (m *SaleMetrics) ObserveCommit(outcome string, d time.Duration) {
	if m == nil || m.commits == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.commits.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// IncBusyRetry cuenta un reintento por almacén ocupado.
func (m *SaleMetrics) IncBusyRetry() {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Inc()
}

// AddAmount acumula el total de una venta confirmada.
func (m *SaleMetrics) AddAmount(total decimal.Decimal) {
	if m == nil || m.amount == nil || total.IsNegative() {
		return
	}
	m.amount.Add(total.InexactFloat64())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
