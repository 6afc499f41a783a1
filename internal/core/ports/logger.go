// Package ports defines the core interfaces for the application.
package ports

// Logger defines the interface for application logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info logs an informational message.
	Info(msg string)
	// Warn logs a warning message.
	Warn(msg string)
	// Debug logs a message that is only shown in verbose mode.
	Debug(msg string)
	// Error logs an error, rendering its cause chain.
	Error(err error)
	// SetJSON switches between JSON and pretty output.
	SetJSON(enable bool)
	// SetVerbose enables debug-level output.
	SetVerbose(enable bool)
}
