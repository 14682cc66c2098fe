package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/disburse/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format follows
// APP_ENV and the minimum level follows LOG_LEVEL.
func New(component string) Logger {
	ApplyLevel(os.Getenv("LOG_LEVEL"))
	return NewZerologLogger(component)
}

// ApplyLevel sets the global zerolog level. Unknown or empty values keep
// the current level.
func ApplyLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return
	}
	zerolog.SetGlobalLevel(lvl)
}
