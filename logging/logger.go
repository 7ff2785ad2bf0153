// Package logging provides the process-wide structured logger used by
// every core component.
package logging

import (
	"context"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

type traceIDKey struct{}

// Logger wraps logrus with the trace-ID plumbing the rest of the core
// expects on every call site.
type Logger struct {
	*logrus.Logger
}

var (
	std  *Logger
	once sync.Once
)

// Std returns the single process-wide logger instance.
func Std() *Logger {
	once.Do(func() {
		l := logrus.New()
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetOutput(os.Stdout)
		std = &Logger{Logger: l}
	})
	return std
}

// WithTraceID returns a context carrying the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID extracts the trace ID from a context, if any.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}

func entry(ctx context.Context) *logrus.Entry {
	e := Std().WithField("component", "module-runtime")
	if tid := TraceID(ctx); tid != "" {
		e = e.WithField("trace_id", tid)
	}
	return e
}

// Debugf logs at debug level, tagging the entry with any trace ID on ctx.
func Debugf(ctx context.Context, format string, args ...any) { entry(ctx).Debugf(format, args...) }

// Infof logs at info level.
func Infof(ctx context.Context, format string, args ...any) { entry(ctx).Infof(format, args...) }

// Warnf logs at warn level.
func Warnf(ctx context.Context, format string, args ...any) { entry(ctx).Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(ctx context.Context, format string, args ...any) { entry(ctx).Errorf(format, args...) }
