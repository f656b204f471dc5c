package metrics

// Every metric is exported as itemforge_<subsystem>_<name>
const (
	Namespace        = "itemforge"
	SubsystemHTTP    = "http"
	SubsystemEvents  = "events"
	SubsystemEconomy = "economy"
	SubsystemCatalog = "catalog"
)

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "requests_total"
	MetricNameHTTPRequestDuration  = "request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "published_total"
	MetricNameEventHandlerErrors = "handler_errors_total"
)

// Economy metric names
const (
	MetricNameItemsCreated      = "items_created_total"
	MetricNameItemsDestroyed    = "items_destroyed_total"
	MetricNameDropsResolved     = "drops_resolved_total"
	MetricNameCurrencyDropped   = "currency_dropped_total"
	MetricNameUpgradeAttempts   = "upgrade_attempts_total"
	MetricNameCombinations      = "combinations_total"
	MetricNameItemsSold         = "items_sold_total"
	MetricNameItemsBought       = "items_bought_total"
	MetricNameMoneyEarned       = "money_earned_total"
	MetricNameMoneySpent        = "money_spent_total"
	MetricNameTradesExecuted    = "trades_executed_total"
	MetricNameGoldTraded        = "gold_traded_total"
	MetricNameTemplateCacheHits = "template_cache_hits_total"
	MetricNameTemplateCacheMiss = "template_cache_misses_total"
	MetricNameTemplateCacheSize = "template_cache_entries"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Economy metric help text
const (
	HelpTextItemsCreated      = "Total number of item records created"
	HelpTextItemsDestroyed    = "Total number of item records destroyed"
	HelpTextDropsResolved     = "Total number of drops and box openings resolved"
	HelpTextCurrencyDropped   = "Total currency produced by drops"
	HelpTextUpgradeAttempts   = "Total number of upgrade rituals by outcome"
	HelpTextCombinations      = "Total number of chaos combinations by outcome"
	HelpTextItemsSold         = "Total number of items sold to the shop"
	HelpTextItemsBought       = "Total number of items bought from the shop"
	HelpTextMoneyEarned       = "Total money earned from selling items"
	HelpTextMoneySpent        = "Total money spent buying items"
	HelpTextTradesExecuted    = "Total number of two-party trades executed"
	HelpTextGoldTraded        = "Total currency that changed hands in trades"
	HelpTextTemplateCacheHits = "Template cache hits"
	HelpTextTemplateCacheMiss = "Template cache misses"
	HelpTextTemplateCacheSize = "Templates currently cached"
)

// Label names
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelCategory = "category"
	LabelTier     = "tier"
	LabelRitual   = "ritual"
	LabelOutcome  = "outcome"
	LabelTemplate = "template_id"
)

// Combination outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoMatch = "no_match"
	CategoryNone   = "none"
)

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

const (
	LogMsgEventPayloadUndecodable = "Event payload could not be decoded"
	LogMsgMetricsRecorded         = "Metrics recorded for event"
)
