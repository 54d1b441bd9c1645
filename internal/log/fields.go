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
	FieldOperation  = "operation"
	FieldUser       = "user"
	FieldCategory   = "category"
	FieldTxnID      = "transaction_id"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentStorage      = "storage"
	ComponentTransactions = "transactions"
	ComponentCategories   = "categories"
	ComponentExport       = "export"
	ComponentCache        = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpRename   = "rename"
	OpSeed     = "seed"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
