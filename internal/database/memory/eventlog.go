package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/osse101/ItemForge_Go/internal/repository"
)

// EventLog keeps the audit trail in process memory
type EventLog struct {
	mu      sync.RWMutex
	entries []repository.EventLogEntry
	nextID  int64
	now     func() time.Time
}

// NewEventLog creates an empty event log
func NewEventLog() *EventLog {
	return &EventLog{now: time.Now}
}

var _ repository.EventLog = (*EventLog)(nil)

// LogEvent implements repository.EventLog
func (l *EventLog) LogEvent(_ context.Context, entry repository.EventLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	entry.ID = l.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now()
	}
	l.entries = append(l.entries, entry)
	return nil
}

// GetEvents implements repository.EventLog
func (l *EventLog) GetEvents(_ context.Context, f repository.EventLogFilter) ([]repository.EventLogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []repository.EventLogEntry{}
	for _, e := range l.entries {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(e repository.EventLogEntry, f repository.EventLogFilter) bool {
	if f.Actor != nil && (e.Actor == nil || *e.Actor != *f.Actor) {
		return false
	}
	if f.EventType != nil && e.EventType != *f.EventType {
		return false
	}
	if f.Since != nil && e.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.CreatedAt.After(*f.Until) {
		return false
	}
	if f.ItemID != nil {
		found := false
		for _, id := range e.ItemIDs {
			if id == *f.ItemID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CleanupOldEvents implements repository.EventLog
func (l *EventLog) CleanupOldEvents(_ context.Context, retentionDays int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().AddDate(0, 0, -retentionDays)
	kept := l.entries[:0]
	var removed int64
	for _, e := range l.entries {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	return removed, nil
}
