package event

// EventSchemaVersion is stamped on every event the economy publishes
const EventSchemaVersion = "1.0"

// Dead-letter file format
const (
	// DeadLetterSchemaVersion changes whenever DeadLetterEntry changes shape
	DeadLetterSchemaVersion = "2"

	DeadLetterFilePermissions = 0o644

	// deadLetterMaxLine bounds one JSONL entry when reading the file back
	deadLetterMaxLine = 1 << 20
)

const (
	LogMsgEventPublishFailed    = "Event publish failed, writing to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write to dead letter"
	LogMsgEventDeadLettered     = "Event dead-lettered"

	ErrMsgHandlersFailed = "event handlers failed"
)
