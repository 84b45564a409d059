// Package logger wraps logrus with the fields every storefront component logs.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type Logger struct {
	*logrus.Entry
}

// New builds a logger for the named component. Unknown levels fall back to info,
// format "json" selects the JSON formatter and anything else the text one.
func New(name, level, format string, out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{Entry: l.WithField("component", name)}
}

func NewDefault(name string) *Logger {
	return New(name, "info", "text", os.Stderr)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New("discard", "panic", "text", io.Discard)
}

// Named returns a child logger for another component sharing the same output.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Entry: l.WithField("component", name)}
}

// WithContext attaches the active trace id, if any.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Entry.WithContext(ctx)
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		entry = entry.WithField("trace_id", sc.TraceID().String())
	}
	return entry
}
