package eventlog

// Query limits
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Log messages - service events
const (
	LogMsgEventPayloadUnencodable = "Event payload could not be encoded, skipping log"
	LogMsgFailedToLogEvent        = "Failed to log event"
	LogMsgEventLogged             = "Event logged"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobOverlap   = "Event log cleanup already running, skipping pass"
	LogMsgCleanupJobFailed    = "Event log cleanup failed"
	LogMsgCleanupJobCompleted = "Event log cleanup completed"
)

// Log field keys - structured logging fields
const (
	LogFieldType          = "type"
	LogFieldActor         = "actor"
	LogFieldItemIDs       = "item_ids"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retention_days"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deleted"
)
