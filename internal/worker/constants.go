package worker

// Log messages - worker pool
const (
	LogMsgWorkerJobFailed       = "Worker job failed"
	LogMsgWorkerJobPanicked     = "Worker job panicked"
	LogMsgWorkerShutdownTimeout = "Worker pool shutdown timeout"
)
