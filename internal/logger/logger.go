package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Logger is the logging interface used throughout the application. It keeps a
// clear separation between internal (debug) logs and user-facing messages: the
// internal methods feed the structured log sink, the user-facing ones print a
// single human-readable line to the console.
type Logger interface {
	// Internal logging methods (structured sink only)

	// Info logs an informational message for debugging purposes.
	Info(format string, args ...interface{})

	// Warning logs a warning for debugging purposes. When verbose mode is
	// enabled it is also shown to the user.
	Warning(format string, args ...interface{})

	// Error logs an operational failure. Errors are always shown to the user.
	Error(format string, args ...interface{})

	// User-facing methods (console, plus the structured sink when enabled)

	// InfoToUser prints an informational line regardless of verbosity.
	InfoToUser(format string, args ...interface{})

	// WarningToUser prints a warning line regardless of verbosity.
	WarningToUser(format string, args ...interface{})

	// Success prints a success line.
	Success(format string, args ...interface{})

	// StatusMessage prints a plain status line (configuration, progress).
	StatusMessage(format string, args ...interface{})

	// Close flushes and closes any open log file handles.
	Close() error
}

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// DefaultLogger implements Logger on top of a zerolog sink.
type DefaultLogger struct {
	mu      sync.Mutex
	zlog    zerolog.Logger
	enabled bool
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
}

// New creates a new Logger. When debug is true, internal log messages are
// written as structured JSON to logFile (falling back to a console writer on
// stderr if the file cannot be opened). verbose controls whether Warning
// messages reach the user.
func New(debug bool, logFile string, verbose bool) Logger {
	return NewWithOutput(debug, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers.
func NewWithOutput(debug bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	zlog := zerolog.Nop()
	var file *os.File

	if debug {
		level := zerolog.DebugLevel

		if logFile != "" {
			if dir := filepath.Dir(logFile); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					_, _ = fmt.Fprintf(stderr, "⚠️  Failed to create log directory: %v\n", err)
				}
			}

			f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err == nil {
				file = f
				zlog = zerolog.New(f).Level(level).With().Timestamp().Logger()
				_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", logFile)
				zlog.Info().Msg("gitdrip debug logging started")
			} else {
				zlog = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()
				_, _ = fmt.Fprintf(stderr, "⚠️  Failed to open log file: %v, using stderr instead\n", err)
			}
		} else {
			zlog = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()
		}
	}

	return &DefaultLogger{
		zlog:    zlog,
		enabled: debug,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
		file:    file,
	}
}

// Info logs an informational message (structured sink only).
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warning logs a warning message. Shown to the user only in verbose mode.
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zlog.Warn().Msg(msg)
	}
	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", warnColor.Sprint(msg))
	}
}

// Error logs an error message. Errors always reach the user on stderr.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zlog.Error().Msg(msg)
	}
	_, _ = fmt.Fprintf(l.stderr, "❌ %s\n", errorColor.Sprint(msg))
}

// InfoToUser logs an informational message to both sink and stdout.
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zlog.Info().Msg(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "ℹ️  %s\n", msg)
}

// WarningToUser logs a warning message to both sink and stdout.
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zlog.Warn().Msg(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", warnColor.Sprint(msg))
}

// Success logs a success message to both sink and stdout.
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zlog.Info().Msg(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "✅ %s\n", successColor.Sprint(msg))
}

// StatusMessage prints a status line to stdout only.
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close flushes buffered data and closes the log file handle if one is open.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			return err
		}
		return l.file.Close()
	}
	return nil
}

// SetStdout sets a custom writer for user-facing stdout messages.
// Primarily intended for testing.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages.
// Primarily intended for testing.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
