// Package logging provides output formatting for cloudrules.
package logging

import (
	"fmt"
	"io"
	"os"
)

// Logger is the leveled logging surface the pipeline packages depend on.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// StderrLogger provides formatted output to stderr.
type StderrLogger struct {
	out     io.Writer
	quiet   bool
	verbose bool
}

// NewStderrLogger creates a new StderrLogger.
func NewStderrLogger(quiet, verbose bool) *StderrLogger {
	return NewLogger(os.Stderr, quiet, verbose)
}

// NewLogger creates a StderrLogger that writes to out instead of stderr.
func NewLogger(out io.Writer, quiet, verbose bool) *StderrLogger {
	return &StderrLogger{
		out:     out,
		quiet:   quiet,
		verbose: verbose,
	}
}

// Info logs an informational message.
func (l *StderrLogger) Info(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[cloudrules] %s\n", msg)
}

// Warn logs a warning. Suppressed in quiet mode like Info.
func (l *StderrLogger) Warn(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[cloudrules] Warning: %s\n", msg)
}

// Debug logs a debug message (only if verbose is enabled).
func (l *StderrLogger) Debug(format string, args ...interface{}) {
	if l.quiet || !l.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[cloudrules] DEBUG: %s\n", msg)
}

// Error logs an error message.
func (l *StderrLogger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[cloudrules] Error: %s\n", msg)
}

// Separator prints a visual separator line.
func (l *StderrLogger) Separator() {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, "[cloudrules] ───────────────────────────────────────────────")
}

// Nop discards everything. Used where a component is built without a logger.
type Nop struct{}

func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Debug(string, ...interface{}) {}
func (Nop) Error(string, ...interface{}) {}

// OrNop returns l, or a Nop logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
