// Package logger provides context-aware structured logging on top of
// logrus. Components pull their logger from the context with G(ctx) so
// request- and session-scoped fields travel with the work.
package logger

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var (
	// G retrieves the logger bound to a context, falling back to L
	G = FromContext
	// L is the process-wide fallback logger entry
	L = logrus.NewEntry(defaultLogger())
)

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(formatterFor("text"))
	return l
}

func formatterFor(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
		FullTimestamp:   true,
	}
}

// WithLogger binds a logger entry to the context
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry.WithContext(ctx))
}

// FromContext returns the logger bound to the context, or L when none is
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L.WithContext(ctx)
}

// SetLevel sets the level of the fallback logger from its string name
func SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	L.Logger.SetLevel(parsed)
	return nil
}

// SetFormat switches the fallback logger between "text" and "json" output
func SetFormat(format string) {
	L.Logger.SetFormatter(formatterFor(format))
}

// SetOutput redirects the fallback logger's output
func SetOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
