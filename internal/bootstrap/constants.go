package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files (read/write for owner, read for group/others)
	LogFilePermission = 0666
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of older session logs kept beside the new one
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingItemForge   = "Starting ItemForge"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file %s: %v\n"
)

// =============================================================================
// Store Configuration
// =============================================================================

const (
	// StoreConnectTimeout bounds pool creation and migrations at startup
	StoreConnectTimeout = 30 * time.Second

	LogMsgStoreReady          = "Item store ready"
	LogMsgMigrationsApplied   = "Database migrations applied"
	ErrMsgFailedConnectStore  = "failed to connect to database"
	ErrMsgFailedMigrate       = "failed to run database migrations"
	LogMsgMemoryStoreWarning  = "Using in-memory store, all state is lost on restart"
	LogMsgRNGSeedGenerated    = "RNG_SERVER_SEED not set, generated an ephemeral seed"
	LogMsgRNGCommitment       = "RNG chain ready"
	ErrMsgFailedGenerateSeed  = "failed to generate server seed"
	RNGGeneratedSeedByteCount = 32
)

// =============================================================================
// Event System Configuration
// =============================================================================

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized    = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir = "failed to create dead-letter directory"
	LogMsgFailedOpenDeadLetter      = "failed to open dead-letter file"
)

// =============================================================================
// Catalog Sync Messages
// =============================================================================

const (
	LogMsgSyncingCatalog    = "Syncing catalog from JSON config..."
	LogMsgCatalogSynced     = "Catalog synced successfully"
	LogMsgCatalogNotPresent = "Catalog file not found, starting with stored configuration only"

	ErrMsgFailedLoadCatalog = "failed to load catalog config"
	ErrMsgInvalidCatalog    = "invalid catalog config"
	ErrMsgFailedSyncCatalog = "failed to sync catalog to store"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

// Log messages for event handler registration
const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgEventLoggerInitialized     = "Event logger initialized"
	ErrMsgFailedRegisterMetrics      = "failed to register metrics collector"
	ErrMsgFailedSubscribeEventLogger = "failed to subscribe event logger"
)

// =============================================================================
// Background Jobs
// =============================================================================

const (
	// BackgroundWorkers is the pool size for scheduled maintenance jobs
	BackgroundWorkers = 1

	// BackgroundQueueSize is the pending job capacity of the maintenance pool
	BackgroundQueueSize = 4

	JobNameEventCleanup = "event_log_cleanup"
	JobNameGroundSweep  = "ground_item_sweep"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer     = "Shutting down server..."
	LogMsgShuttingDownBackground = "Stopping background jobs..."
	LogMsgServerStopped          = "Server stopped"
	LogMsgServerForcedShutdown   = "Server forced to shutdown"
	LogMsgWorkerPoolFailed       = "Worker pool shutdown failed"
	LogMsgDeadLetterCloseFailed  = "Dead-letter file close failed"
)
