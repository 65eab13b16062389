// Package log wraps zerolog with a component-tagged logger shared by
// the whole daemon.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// LogLevel represents the logging level
type LogLevel string

const (
	LevelTrace LogLevel = "trace"
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelNone  LogLevel = "none"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339

	log = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	level := LevelInfo
	if env := os.Getenv("SEEDWARDEN_LOG_LEVEL"); env != "" {
		level = LogLevel(strings.ToLower(env))
	}
	SetLevel(level)
}

// SetLevel sets the global log level. Unknown levels fall back to info.
func SetLevel(level LogLevel) {
	switch level {
	case LevelTrace:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case LevelDebug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case LevelInfo:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case LevelWarn:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case LevelError:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case LevelNone:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Trace returns a new Trace level event logger with component context
func Trace(component string) *zerolog.Event {
	return log.Trace().Str("component", component)
}

// Debug returns a new Debug level event logger with component context
func Debug(component string) *zerolog.Event {
	return log.Debug().Str("component", component)
}

// Info returns a new Info level event logger with component context
func Info(component string) *zerolog.Event {
	return log.Info().Str("component", component)
}

// Warn returns a new Warn level event logger with component context
func Warn(component string) *zerolog.Event {
	return log.Warn().Str("component", component)
}

// Error returns a new Error level event logger with component context
func Error(component string) *zerolog.Event {
	return log.Error().Str("component", component)
}

// Fatal returns a new Fatal level event logger with component context
func Fatal(component string) *zerolog.Event {
	return log.Fatal().Str("component", component)
}
