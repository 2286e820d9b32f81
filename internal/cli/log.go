package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// errorColor styles error lines on stderr.
var errorColor = color.New(color.FgRed)

// Logger returns the process logger. It writes human-readable lines to
// stderr and only emits debug events when --verbose is set.
func Logger() zerolog.Logger {
	return newLogger(verbose, term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(verbose, colored bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !colored,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// VerboseLog writes a debug line when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}
