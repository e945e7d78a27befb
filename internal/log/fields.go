package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldYear       = "year"
	FieldDate       = "date"
	FieldRecordID   = "record_id"
	FieldRecordType = "record_type"
	FieldCount      = "count"
	FieldScope      = "scope"
	FieldCacheKey   = "cache_key"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentService = "service"
	ComponentCache   = "cache"
)
