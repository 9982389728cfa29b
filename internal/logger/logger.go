// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. Development gets a human-readable console
// writer; every other environment logs JSON to stdout.
func Setup(env, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	// Route stray stdlib log output through zerolog as well.
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

// Component returns a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// StdLogger adapts a zerolog logger for libraries that want a *log.Logger.
func StdLogger(l zerolog.Logger) *stdlog.Logger {
	return stdlog.New(l, "", 0)
}
