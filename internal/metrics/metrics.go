package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemHTTP,
			Name:      MetricNameHTTPRequestsTotal,
			Help:      HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemHTTP,
			Name:      MetricNameHTTPRequestDuration,
			Help:      HelpTextHTTPRequestDuration,
			Buckets:   HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: SubsystemHTTP,
			Name:      MetricNameHTTPRequestsInFlight,
			Help:      HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEvents,
			Name:      MetricNameEventsPublished,
			Help:      HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEvents,
			Name:      MetricNameEventHandlerErrors,
			Help:      HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Economy Metrics
var (
	ItemsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameItemsCreated,
			Help:      HelpTextItemsCreated,
		},
		[]string{LabelCategory},
	)

	ItemsDestroyed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameItemsDestroyed,
			Help:      HelpTextItemsDestroyed,
		},
	)

	DropsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameDropsResolved,
			Help:      HelpTextDropsResolved,
		},
		[]string{LabelTier, LabelCategory},
	)

	CurrencyDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameCurrencyDropped,
			Help:      HelpTextCurrencyDropped,
		},
	)

	UpgradeAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameUpgradeAttempts,
			Help:      HelpTextUpgradeAttempts,
		},
		[]string{LabelRitual, LabelOutcome},
	)

	Combinations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameCombinations,
			Help:      HelpTextCombinations,
		},
		[]string{LabelOutcome},
	)

	ItemsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameItemsSold,
			Help:      HelpTextItemsSold,
		},
		[]string{LabelTemplate},
	)

	ItemsBought = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameItemsBought,
			Help:      HelpTextItemsBought,
		},
		[]string{LabelTemplate},
	)

	TradesExecuted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameTradesExecuted,
			Help:      HelpTextTradesExecuted,
		},
	)

	GoldTraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameGoldTraded,
			Help:      HelpTextGoldTraded,
		},
	)

	MoneyEarned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameMoneyEarned,
			Help:      HelpTextMoneyEarned,
		},
	)

	MoneySpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEconomy,
			Name:      MetricNameMoneySpent,
			Help:      HelpTextMoneySpent,
		},
	)
)

// CacheStatsFunc reports cumulative hits, misses and the current entry count
type CacheStatsFunc func() (hits, misses uint64, size int)

// RegisterTemplateCache exposes template cache statistics. Call it once per process.
func RegisterTemplateCache(reg prometheus.Registerer, stats CacheStatsFunc) {
	factory := promauto.With(reg)
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: SubsystemCatalog,
		Name:      MetricNameTemplateCacheHits,
		Help:      HelpTextTemplateCacheHits,
	}, func() float64 {
		hits, _, _ := stats()
		return float64(hits)
	})
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: SubsystemCatalog,
		Name:      MetricNameTemplateCacheMiss,
		Help:      HelpTextTemplateCacheMiss,
	}, func() float64 {
		_, misses, _ := stats()
		return float64(misses)
	})
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: SubsystemCatalog,
		Name:      MetricNameTemplateCacheSize,
		Help:      HelpTextTemplateCacheSize,
	}, func() float64 {
		_, _, size := stats()
		return float64(size)
	})
}
