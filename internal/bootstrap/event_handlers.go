package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/eventlog"
	"github.com/osse101/ItemForge_Go/internal/metrics"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus        event.Bus
	EventLogService eventlog.Service
	CatalogService  catalog.Service
	Registerer      prometheus.Registerer
}

// RegisterEventHandlers sets up the bus subscribers:
// - Metrics collector (counters per committed operation)
// - Event logger (persists the audit trail)
// It also exposes the template cache statistics as gauges when a registerer is given.
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	if err := deps.EventLogService.Subscribe(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSubscribeEventLogger, err)
	}
	slog.Info(LogMsgEventLoggerInitialized)

	if deps.Registerer != nil && deps.CatalogService != nil {
		metrics.RegisterTemplateCache(deps.Registerer, func() (uint64, uint64, int) {
			s := deps.CatalogService.CacheStats()
			return s.Hits, s.Misses, s.Size
		})
	}

	return nil
}
