package event

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/osse101/ItemForge_Go/internal/logger"
)

// DeadLetterEntry is one undeliverable event, with the item and caller it
// concerned lifted out so entries can be triaged without decoding payloads
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	EventType     Type      `json:"event_type"`
	Actor         string    `json:"actor,omitempty"`
	ItemIDs       []int64   `json:"item_ids,omitempty"`
	Event         Event     `json:"event"`
	LastError     string    `json:"last_error,omitempty"`
}

// DeadLetterWriter appends failed events to a JSONL file
type DeadLetterWriter struct {
	file *os.File
	mu   sync.Mutex
}

// NewDeadLetterWriter opens path for appending, creating it if needed
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		return nil, err
	}
	return &DeadLetterWriter{file: f}, nil
}

// Write appends evt together with the error that stopped its delivery
func (dlw *DeadLetterWriter) Write(ctx context.Context, evt Event, cause error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Timestamp:     time.Now().UTC(),
		EventType:     evt.Type,
		Event:         evt,
	}
	if refs, ok := evt.Payload.(ItemRefs); ok {
		entry.ItemIDs = refs.ItemIDs()
	}
	if actor, ok := evt.Payload.(Actor); ok {
		entry.Actor = actor.ActorID()
	}
	if cause != nil {
		entry.LastError = cause.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Warn(LogMsgEventDeadLettered,
		"event_type", evt.Type,
		"actor", entry.Actor,
		"item_ids", entry.ItemIDs,
		"error", cause)

	dlw.mu.Lock()
	defer dlw.mu.Unlock()
	_, err = dlw.file.Write(append(data, '\n'))
	return err
}

// Close closes the dead-letter file
func (dlw *DeadLetterWriter) Close() error {
	return dlw.file.Close()
}

// ReadDeadLetters loads every entry of a dead-letter file in write order.
// Payloads come back as generic JSON; use DecodePayload to type them.
func ReadDeadLetters(path string) ([]DeadLetterEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []DeadLetterEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), deadLetterMaxLine)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry DeadLetterEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("dead-letter line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
