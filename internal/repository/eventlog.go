package repository

import (
	"context"
	"time"
)

// EventLog defines the interface for the audit trail storage
type EventLog interface {
	// LogEvent stores an event with the caller and the items it concerns
	LogEvent(ctx context.Context, entry EventLogEntry) error

	// GetEvents retrieves events based on filter criteria, newest first
	GetEvents(ctx context.Context, filter EventLogFilter) ([]EventLogEntry, error)

	// CleanupOldEvents removes events older than the specified number of days
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

// EventLogEntry represents a logged event
type EventLogEntry struct {
	ID        int64                  `json:"id"`
	EventType string                 `json:"event_type"`
	Actor     *string                `json:"actor,omitempty"`
	ItemIDs   []int64                `json:"item_ids,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// EventLogFilter filters events for queries
type EventLogFilter struct {
	Actor     *string
	ItemID    *int64
	EventType *string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}
