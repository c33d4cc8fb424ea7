package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
)

// ValidationMetrics agrupa os contadores de veredito usados pelo worker e pela API.
type ValidationMetrics struct {
	Transitions  *prometheus.CounterVec
	KindResults  *prometheus.CounterVec
	Rejections   *prometheus.CounterVec
	WorkerErrors *prometheus.CounterVec
	Latency      prometheus.Histogram
}

// NewValidationMetrics cria e registra as métricas no registry informado
// (prometheus.DefaultRegisterer nos mains, registry próprio nos testes).
func NewValidationMetrics(reg prometheus.Registerer) *ValidationMetrics {
	m := &ValidationMetrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transitions_total", Help: "transições avaliadas por resultado",
		}, []string{"outcome"}),
		KindResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_kind_results_total", Help: "resultados por tipo de ativo",
		}, []string{"kind", "outcome"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_rejections_total", Help: "rejeições por regra",
		}, []string{"kind", "rule"}),
		WorkerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_worker_errors_total", Help: "erros por estágio",
		}, []string{"stage"}),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_validation_seconds",
			Help:    "tempo de validação de uma transição",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
	}
	reg.MustRegister(m.Transitions, m.KindResults, m.Rejections, m.WorkerErrors, m.Latency)
	return m
}

func outcome(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}

// ObserveVerdict contabiliza um veredito completo.
func (m *ValidationMetrics) ObserveVerdict(v validator.Verdict, elapsed time.Duration) {
	m.Transitions.WithLabelValues(outcome(v.Accepted)).Inc()
	m.Latency.Observe(elapsed.Seconds())
	for _, r := range v.Results {
		m.KindResults.WithLabelValues(r.Kind.String(), outcome(r.Accepted())).Inc()
		if rej, ok := validator.AsRejection(r.Err); ok {
			m.Rejections.WithLabelValues(rej.Kind.String(), rej.Rule).Inc()
		}
	}
}

// Stage devolve um callback de erro por estágio, no formato que os consumers esperam.
func (m *ValidationMetrics) Stage() func(string) {
	return func(stage string) { m.WorkerErrors.WithLabelValues(stage).Inc() }
}
