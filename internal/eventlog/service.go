// Package eventlog keeps the audit trail: every committed economy event is stored with
// the caller and the items it concerns, so the history of an item can be replayed.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// Service handles event logging business logic
type Service interface {
	// Subscribe registers the event logger to listen to all events
	Subscribe(bus event.Bus) error

	// Events returns entries matching the filter, newest first
	Events(ctx context.Context, filter repository.EventLogFilter) ([]repository.EventLogEntry, error)

	// ItemHistory returns every entry that references the item, newest first
	ItemHistory(ctx context.Context, itemID int64, limit int) ([]repository.EventLogEntry, error)

	// UserHistory returns every entry caused by the user, newest first
	UserHistory(ctx context.Context, userID string, limit int) ([]repository.EventLogEntry, error)

	// CleanupOldEvents removes events older than retention period
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo repository.EventLog
}

// NewService creates a new event logging service
func NewService(repo repository.EventLog) Service {
	return &service{repo: repo}
}

// Subscribe registers event handlers for all event types
func (s *service) Subscribe(bus event.Bus) error {
	for _, eventType := range event.AllTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
	return nil
}

// handleEvent stores one event. Item and actor references come from the typed payload.
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	entry, err := entryFor(evt)
	if err != nil {
		log.Warn(LogMsgEventPayloadUnencodable, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	if err := s.repo.LogEvent(ctx, entry); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, LogFieldActor, entry.Actor, LogFieldItemIDs, entry.ItemIDs)
	return nil
}

func entryFor(evt event.Event) (repository.EventLogEntry, error) {
	entry := repository.EventLogEntry{EventType: string(evt.Type)}

	if refs, ok := evt.Payload.(event.ItemRefs); ok {
		entry.ItemIDs = refs.ItemIDs()
	}
	if actor, ok := evt.Payload.(event.Actor); ok {
		if id := actor.ActorID(); id != "" {
			entry.Actor = &id
		}
	}

	payload, err := toMap(evt.Payload)
	if err != nil {
		return entry, fmt.Errorf("payload: %w", err)
	}
	entry.Payload = payload

	if m, ok := evt.Metadata.(map[string]interface{}); ok {
		entry.Metadata = m
	}
	return entry, nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	if m, ok := v.(map[string]interface{}); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Events(ctx context.Context, filter repository.EventLogFilter) ([]repository.EventLogEntry, error) {
	filter.Limit = clampLimit(filter.Limit)
	return s.repo.GetEvents(ctx, filter)
}

func (s *service) ItemHistory(ctx context.Context, itemID int64, limit int) ([]repository.EventLogEntry, error) {
	if itemID <= 0 {
		return nil, fmt.Errorf("item id %d | %w", itemID, domain.ErrInvalidInput)
	}
	return s.repo.GetEvents(ctx, repository.EventLogFilter{ItemID: &itemID, Limit: clampLimit(limit)})
}

func (s *service) UserHistory(ctx context.Context, userID string, limit int) ([]repository.EventLogEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id | %w", domain.ErrInvalidInput)
	}
	return s.repo.GetEvents(ctx, repository.EventLogFilter{Actor: &userID, Limit: clampLimit(limit)})
}

// CleanupOldEvents removes events older than the retention period
func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention of %d days | %w", retentionDays, domain.ErrInvalidInput)
	}
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
