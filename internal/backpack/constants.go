package backpack

// GroundSweepBatch bounds how many expired ground items one sweep pass destroys
const GroundSweepBatch = 500

// Log messages - ground sweep
const (
	LogMsgGroundItemSkipped    = "Ground item changed during sweep, skipping"
	LogMsgGroundSweepOverlap   = "Ground sweep already running, skipping pass"
	LogMsgGroundSweepFailed    = "Ground sweep failed"
	LogMsgGroundSweepCompleted = "Ground sweep completed"
)

// Log field keys - structured logging fields
const (
	LogFieldItemID   = "item_id"
	LogFieldError    = "error"
	LogFieldTTL      = "ttl"
	LogFieldExpired  = "expired"
	LogFieldDuration = "duration"
)
