/*
Package logx is the zerolog setup shared by the chat manager, the stores, the sweeper
and the HTTP handlers.

Long-lived components take a Component logger once and log through zerolog directly;
handlers use the Info, Warn, Error and Fatal helpers with alternating key/value fields
such as "email", "user_id" or "conn_id".
*/
package logx

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the process logger once at startup.
// Development writes colored Debug output to stderr; any other environment writes
// Info-level JSON lines to stdout. Every entry carries a timestamp and the caller.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	if isDevelopment {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel)
	}

	log.Logger = logger.With().Timestamp().Caller().Logger()
}

// SetOutput sends all logs to w at level. Test packages call it from TestMain.
func SetOutput(w io.Writer, level zerolog.Level) {
	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Logger exposes the process logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a logger whose entries carry component=name, e.g. "Manager" or "Sweeper".
// It captures the process logger at call time.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// emit writes msg with fields on e. An odd field count cannot be paired, so the
// fields are dropped and a warning names the offending call.
// skip 2 attributes the entry to the caller of Info, Warn, Error or Fatal.
func emit(e *zerolog.Event, level, msg string, fields []any) {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Str("log_level", level).
			Int("fields_count", len(fields)).
			Msgf("logx.%s called with unpaired fields %v; fields dropped.", level, fields)
		fields = nil
	}
	e.Fields(fields).CallerSkipFrame(2).Msg(msg)
}

// Info logs a handler-level event such as a registration or login.
func Info(msg string, fields ...any) {
	emit(Logger().Info(), "Info", msg, fields)
}

// Warn logs a rejected request or a recoverable failure.
func Warn(msg string, fields ...any) {
	emit(Logger().Warn(), "Warn", msg, fields)
}

// Error logs err with a message, typically a failed store or mail call.
func Error(err error, msg string, fields ...any) {
	emit(Logger().Error().Err(err), "Error", msg, fields)
}

// Fatal logs err and exits; only startup in cmd uses it.
func Fatal(err error, msg string, fields ...any) {
	emit(Logger().Fatal().Err(err), "Fatal", msg, fields)
}
