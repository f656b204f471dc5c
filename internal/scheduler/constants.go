package scheduler

const (
	LogMsgJobScheduled     = "Job scheduled"
	LogMsgScheduleDisabled = "Job schedule disabled, interval not positive"
	LogMsgTickSkipped      = "Worker queue full, skipping scheduled tick"
)
