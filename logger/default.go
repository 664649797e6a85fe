package logger

import (
	"io"
	"os"
)

var defLogger = NewSlog(os.Stderr, InfoLevel, FormatConsole)

// GetLogger returns the process-wide logger
func GetLogger() Logger {
	return defLogger
}

// SetLogger replaces the process-wide logger
func SetLogger(l Logger) {
	defLogger = l
}

// Discard returns a logger that drops everything, for tests
func Discard() Logger {
	return NewSlog(io.Discard, ErrorLevel, FormatJSON)
}
