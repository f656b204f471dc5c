package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/server"
	"github.com/osse101/ItemForge_Go/internal/sse"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server       *server.Server
	Stream       *sse.Hub
	Background   *Background
	DeadLetter   *event.DeadLetterWriter
	Repositories *Repositories
}

// GracefulShutdown stops components in dependency order:
// 1. Event stream hub (ends long-lived stream responses)
// 2. HTTP server (stop accepting requests, finish in-flight ones)
// 3. Background jobs (scheduler, then worker pool)
// 4. Dead-letter file and database pool
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	if components.Stream != nil {
		components.Stream.Stop()
	}

	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Background != nil {
		slog.Info(LogMsgShuttingDownBackground)
		if err := components.Background.Shutdown(ctx); err != nil {
			slog.Error(LogMsgWorkerPoolFailed, "error", err)
		}
	}

	if components.DeadLetter != nil {
		if err := components.DeadLetter.Close(); err != nil {
			slog.Error(LogMsgDeadLetterCloseFailed, "error", err)
		}
	}

	if components.Repositories != nil {
		components.Repositories.Close()
	}

	slog.Info(LogMsgServerStopped)
}
