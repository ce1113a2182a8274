package logging

// Standardized field names for structured logging, so ingestion runs produce
// consistent, filterable output.
const (
	FieldBatch      = "batch"
	FieldMessageID  = "message_id"
	FieldCount      = "count"
	FieldAdded      = "added"
	FieldDuplicates = "duplicates"
	FieldFolder     = "folder"
	FieldSince      = "since"
	FieldAttempt    = "attempt"
	FieldDatabase   = "database"
	FieldOutputFile = "output_file"
	FieldError      = "error"
)
