package event

import (
	"context"
	"sync"

	"github.com/osse101/ItemForge_Go/internal/logger"
)

// Recorder buffers the events of one economy operation.
// Nothing is published until Flush, which callers invoke only after the transaction commits,
// so a rolled back operation never leaks events.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record buffers an event
func (r *Recorder) Record(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of the buffered events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Flush publishes the buffered events in order and clears the buffer
func (r *Recorder) Flush(ctx context.Context, pub *Publisher) {
	r.mu.Lock()
	events := r.events
	r.events = nil
	r.mu.Unlock()

	for _, evt := range events {
		pub.Publish(ctx, evt)
	}
}

// Publisher delivers committed events to the bus.
// Delivery is attempted once; failures go to the dead-letter file when one is configured.
type Publisher struct {
	bus        Bus
	deadLetter *DeadLetterWriter
}

// NewPublisher creates a publisher. deadLetter may be nil.
func NewPublisher(bus Bus, deadLetter *DeadLetterWriter) *Publisher {
	return &Publisher{bus: bus, deadLetter: deadLetter}
}

// Bus returns the underlying bus, for subscribers
func (p *Publisher) Bus() Bus {
	return p.bus
}

// Publish delivers one event. Errors are logged, never returned: the operation already committed.
func (p *Publisher) Publish(ctx context.Context, evt Event) {
	if p == nil || p.bus == nil {
		return
	}
	err := p.bus.Publish(ctx, evt)
	if err == nil {
		return
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", evt.Type, "error", err)
	if p.deadLetter == nil {
		return
	}
	if dlErr := p.deadLetter.Write(ctx, evt, err); dlErr != nil {
		logger.FromContext(ctx).Error(LogMsgDeadLetterWriteFailed, "event_type", evt.Type, "error", dlErr)
	}
}
