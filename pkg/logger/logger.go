package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var std zerolog.Logger

// Init initializes the basic printf-style logger. Call before InitStructured;
// early startup messages go through this until the env is known.
func Init() {
	std = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// Info logs a formatted info message
func Info(format string, args ...interface{}) {
	std.Info().Msg(fmt.Sprintf(format, args...))
}

// Error logs a formatted error message
func Error(format string, args ...interface{}) {
	std.Error().Msg(fmt.Sprintf(format, args...))
}
