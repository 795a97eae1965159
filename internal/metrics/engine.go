package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// FilterEvaluationsTotal counts classifier invocations per filter id.
	FilterEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealfilter",
			Name:      "filter_evaluations_total",
			Help:      "Total number of filter evaluations",
		},
		[]string{"filter"},
	)

	// CacheLookupsTotal counts result-cache lookups by outcome.
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealfilter",
			Name:      "cache_lookups_total",
			Help:      "Total number of result cache lookups",
		},
		[]string{"result"},
	)

	// SearchDuration observes whole-collection search execution time.
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dealfilter",
			Name:      "search_duration_seconds",
			Help:      "Property search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// PropertiesEvaluated counts properties run through the combination engine.
	PropertiesEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dealfilter",
			Name:      "properties_evaluated_total",
			Help:      "Total number of properties evaluated by searches",
		},
	)
)

func init() {
	prometheus.MustRegister(FilterEvaluationsTotal)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(PropertiesEvaluated)
}
