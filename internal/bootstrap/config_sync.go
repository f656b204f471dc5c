package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/osse101/ItemForge_Go/internal/catalog"
)

// SyncCatalog loads, validates, and applies the catalog JSON through the catalog service.
// A missing file is not an error: the store may already hold the configuration.
func SyncCatalog(ctx context.Context, path string, catalogSvc catalog.Service) (*catalog.SyncResult, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Warn(LogMsgCatalogNotPresent, "path", path)
		return &catalog.SyncResult{}, nil
	}

	slog.Info(LogMsgSyncingCatalog, "path", path)
	loader := catalog.NewLoader()

	file, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}

	if err := loader.Validate(file); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidCatalog, err)
	}

	result, err := loader.Sync(ctx, file, catalogSvc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedSyncCatalog, err)
	}

	slog.Info(LogMsgCatalogSynced, "path", path, "hash", file.Hash())

	return result, nil
}
