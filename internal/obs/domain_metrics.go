package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// EvaluationsTotal counts cart evaluations by outcome ("discount" or "empty").
	EvaluationsTotal *prometheus.CounterVec
	// DiscountTargetsTotal counts cart lines targeted by emitted discounts.
	DiscountTargetsTotal prometheus.Counter
	// BadgesAppliedTotal counts badges appended to storefront documents.
	BadgesAppliedTotal prometheus.Counter
	// ConfigFetchTotal counts rule blob lookups by source ("cache", "db", "miss").
	ConfigFetchTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		EvaluationsTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_evaluations_total",
			Help:      "Count of cart discount evaluations by outcome.",
		}, []string{"result"}))
		DiscountTargetsTotal = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_targets_total",
			Help:      "Total cart lines targeted by emitted discount operations.",
		}))
		BadgesAppliedTotal = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storefront_badges_applied_total",
			Help:      "Total promotional badges appended to storefront documents.",
		}))
		ConfigFetchTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_fetch_total",
			Help:      "Count of shop rule blob lookups by source.",
		}, []string{"source"}))
	})
}

// IncEvaluation records a cart evaluation outcome. Safe before registration.
func IncEvaluation(result string) {
	if EvaluationsTotal != nil {
		EvaluationsTotal.WithLabelValues(result).Inc()
	}
}

// AddDiscountTargets records the number of lines targeted by an operation.
func AddDiscountTargets(n int) {
	if DiscountTargetsTotal != nil && n > 0 {
		DiscountTargetsTotal.Add(float64(n))
	}
}

// AddBadges records badges appended during a storefront pass.
func AddBadges(n int) {
	if BadgesAppliedTotal != nil && n > 0 {
		BadgesAppliedTotal.Add(float64(n))
	}
}

// IncConfigFetch records where a rule blob lookup was served from.
func IncConfigFetch(source string) {
	if ConfigFetchTotal != nil {
		ConfigFetchTotal.WithLabelValues(source).Inc()
	}
}
