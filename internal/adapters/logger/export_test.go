package logger

// Exported for white-box testing of the error rendering.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)
