package logger

import (
	"io"
	"log/slog"
)

// InitLoggerWithWriter installs the process-wide slog logger writing to w
func InitLoggerWithWriter(cfg Config, w io.Writer) {
	slog.SetDefault(slog.New(cfg.NewHandler(w)))
}
