package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldSection     = "section"
	FieldEntityID    = "entity_id"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldFilename    = "filename"
	FieldCount       = "count"
	FieldBytes       = "bytes"
	FieldTheme       = "theme"
)

// Components defines standard component names.
const (
	ComponentApp        = "app"
	ComponentStore      = "store"
	ComponentStorage    = "storage"
	ComponentBackup     = "backup"
	ComponentController = "controller"
	ComponentTerm       = "term"
)

// Operations defines standard operation names.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpLoad    = "load"
	OpSave    = "save"
	OpExport  = "export"
	OpImport  = "import"
	OpClear   = "clear"
	OpRender  = "render"
	OpStartup = "startup"
)
