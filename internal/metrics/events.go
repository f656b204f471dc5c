package metrics

import (
	"context"
	"strconv"

	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	for _, eventType := range event.AllTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}
	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	if err := record(evt); err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgEventPayloadUndecodable, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func record(evt event.Event) error {
	switch evt.Type {
	case event.ItemCreated:
		p, err := event.DecodePayload[event.ItemCreatedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		ItemsCreated.WithLabelValues(string(p.Category)).Inc()

	case event.ItemDestroyed:
		ItemsDestroyed.Inc()

	case event.ItemDropped:
		p, err := event.DecodePayload[event.ItemDroppedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		category := string(p.Category)
		if category == "" {
			category = CategoryNone
		}
		DropsResolved.WithLabelValues(strconv.Itoa(p.Tier), category).Inc()
		if p.Currency > 0 {
			CurrencyDropped.Add(float64(p.Currency))
		}

	case event.UpgradeAttempted:
		p, err := event.DecodePayload[event.UpgradeAttemptedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		UpgradeAttempts.WithLabelValues(p.Ritual, p.Outcome).Inc()

	case event.RecipeResolved:
		p, err := event.DecodePayload[event.RecipeResolvedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		Combinations.WithLabelValues(combineOutcome(p)).Inc()

	case event.ItemBought:
		p, err := event.DecodePayload[event.ShopPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		ItemsBought.WithLabelValues(strconv.Itoa(p.TemplateID)).Add(float64(len(p.Items)))
		MoneySpent.Add(float64(p.Amount))

	case event.ItemSold:
		p, err := event.DecodePayload[event.ShopPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		ItemsSold.WithLabelValues(strconv.Itoa(p.TemplateID)).Inc()
		MoneyEarned.Add(float64(p.Amount))

	case event.TradeExecuted:
		p, err := event.DecodePayload[event.TradeExecutedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		TradesExecuted.Inc()
		GoldTraded.Add(float64(p.Initiator.Gold + p.Partner.Gold))
	}
	return nil
}

func combineOutcome(p event.RecipeResolvedPayloadV1) string {
	switch {
	case p.RecipeID == 0:
		return OutcomeNoMatch
	case p.Success:
		return OutcomeSuccess
	default:
		return OutcomeFailure
	}
}
