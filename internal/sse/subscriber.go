package sse

import (
	"context"
	"log/slog"

	"github.com/osse101/ItemForge_Go/internal/event"
)

// Subscriber bridges the internal event bus to the hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{hub: hub, bus: bus}
}

// Subscribe forwards every item economy event type to the hub
func (s *Subscriber) Subscribe() {
	types := make([]string, 0, len(event.AllTypes))
	for _, t := range event.AllTypes {
		s.bus.Subscribe(t, s.handleEvent)
		types = append(types, string(t))
	}
	slog.Info(LogMsgSubscriberReady, "types", types)
}

func (s *Subscriber) handleEvent(_ context.Context, evt event.Event) error {
	out := Event{
		Type:    string(evt.Type),
		Payload: evt.Payload,
	}
	if refs, ok := evt.Payload.(event.ItemRefs); ok {
		out.ItemIDs = refs.ItemIDs()
	}
	if actor, ok := evt.Payload.(event.Actor); ok {
		out.Actor = actor.ActorID()
	}

	s.hub.Broadcast(out)
	slog.Debug(LogMsgEventBroadcast, "event_type", out.Type, "actor", out.Actor)
	return nil
}
