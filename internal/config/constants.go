package config

import "time"

// Store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

const maxPort = 65535

// Defaults applied when the environment leaves a setting unset
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultLogDir      = "logs"
	DefaultServiceName = "item-forge"
	DefaultVersion     = "dev"
	DefaultEnvironment = "dev"

	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute

	DefaultRequestsPerWindow = 1000
	DefaultMaxBodyBytes      = 1 << 20

	DefaultCacheSize = 1024
	DefaultCacheTTL  = 10 * time.Minute

	DefaultEventRetentionDays   = 90
	DefaultEventCleanupInterval = 24 * time.Hour

	DefaultGroundItemTTL       = time.Hour
	DefaultGroundSweepInterval = time.Minute

	DefaultTradeSessionLimit = 1024
	DefaultTradeSessionTTL   = 10 * time.Minute
)

// Configuration file paths
const (
	DefaultCatalogPath    = "configs/catalog.json"
	DefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)
