package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osse101/ItemForge_Go/internal/config"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/sse"
)

// EventSystem bundles the in-process bus with the publisher services commit through
type EventSystem struct {
	Bus        *event.MemoryBus
	Publisher  *event.Publisher
	DeadLetter *event.DeadLetterWriter
}

// InitializeEventSystem creates the event bus and a publisher whose failed
// deliveries land in the dead-letter file. An empty dead-letter path disables it.
func InitializeEventSystem(cfg *config.Config) (*EventSystem, error) {
	bus := event.NewMemoryBus()

	var deadLetter *event.DeadLetterWriter
	if cfg.EventDeadLetterPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.EventDeadLetterPath), DirPermission); err != nil {
			return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateDeadLetterDir, err)
		}
		dlw, err := event.NewDeadLetterWriter(cfg.EventDeadLetterPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", LogMsgFailedOpenDeadLetter, err)
		}
		deadLetter = dlw
	}

	slog.Info(LogMsgEventSystemInitialized, "deadletter_path", cfg.EventDeadLetterPath)

	return &EventSystem{
		Bus:        bus,
		Publisher:  event.NewPublisher(bus, deadLetter),
		DeadLetter: deadLetter,
	}, nil
}

// StartEventStream starts the live stream hub and feeds it from the bus
func StartEventStream(bus event.Bus) *sse.Hub {
	hub := sse.NewHub()
	hub.Start()
	sse.NewSubscriber(hub, bus).Subscribe()
	return hub
}
