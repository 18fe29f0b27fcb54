// Package logging builds the phuslu loggers shared by all components.
package logging

import (
	"io"

	"github.com/phuslu/log"
)

// New returns a console logger writing to w at the named level. Unknown
// levels fall back to info.
func New(level string, w io.Writer) *log.Logger {
	return &log.Logger{
		Level:  log.ParseLevel(level),
		Writer: &log.ConsoleWriter{Writer: w},
	}
}

// Discard returns a logger that drops every event.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: log.IOWriter{Writer: io.Discard},
	}
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
