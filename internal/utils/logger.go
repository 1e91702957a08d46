package utils

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	verbose atomic.Bool
	logger  = log.New(os.Stdout, "", log.LstdFlags)
)

// SetVerboseLogging sets the global verbose logging flag
func SetVerboseLogging(v bool) {
	verbose.Store(v)
}

// VerboseLogging reports whether info and debug messages are emitted
func VerboseLogging() bool {
	return verbose.Load()
}

// SetLogOutput redirects all log output, mainly for tests and the CLI
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

func logf(level, component, format string, args ...interface{}) {
	prefix := "[" + level + "] "
	if component != "" {
		prefix += "[" + component + "] "
	}
	logger.Printf(prefix+format, args...)
}

// LogInfo logs informational messages only if verbose logging is enabled
func LogInfo(component, format string, args ...interface{}) {
	if verbose.Load() {
		logf("INFO", component, format, args...)
	}
}

// LogDebug logs noisy per-tick messages, verbose only
func LogDebug(component, format string, args ...interface{}) {
	if verbose.Load() {
		logf("DEBUG", component, format, args...)
	}
}

// LogError logs error messages (always shown)
func LogError(component, format string, args ...interface{}) {
	logf("ERROR", component, format, args...)
}

// LogWarning logs warning messages (always shown)
func LogWarning(component, format string, args ...interface{}) {
	logf("WARNING", component, format, args...)
}

// LogSuccess logs success messages (always shown)
func LogSuccess(component, format string, args ...interface{}) {
	logf("SUCCESS", component, format, args...)
}
