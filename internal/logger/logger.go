// Package logger provides the diagnostic logger shared by the CLI and the
// discovery backends. Diagnostics go to stderr so they never mix with the
// progress line on stdout.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type Config struct {
	Level string
	Debug bool
}

var globalLogger zerolog.Logger

func init() {
	globalLogger = newLogger(os.Stderr, zerolog.WarnLevel)
}

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = !term.IsTerminal(int(f.Fd()))
	}
	console := zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: time.TimeOnly}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Init replaces the global logger according to config. An empty level means
// warn.
func Init(config Config) error {
	level := zerolog.WarnLevel
	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return err
		}
	}

	globalLogger = newLogger(os.Stderr, level)
	return nil
}

// SetOutput redirects the global logger, keeping its level.
func SetOutput(w io.Writer) {
	globalLogger = newLogger(w, globalLogger.GetLevel())
}

func GetLogger() zerolog.Logger {
	return globalLogger
}

func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}
