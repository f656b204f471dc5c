package logger

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

const (
	DefaultServiceName = "item-forge"
	DefaultVersion     = "dev"

	EnvironmentDev         = "dev"
	EnvironmentDevelopment = "development"
)

// Attribute keys shared by every log line
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
	AttrKeyCallerID    = "caller_id"
	AttrKeyJob         = "job"
)
