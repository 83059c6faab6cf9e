package log

import (
	"context"
	"os"
)

// Sink is a destination for log entries.
type Sink interface {
	Log(entry Entry) error
}

// Interface is implemented by loggers.
type Interface interface {
	Log(entry Entry)
	Logf(level Level, format string, args ...interface{})
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	// Errorf logs an error, or nothing if err is nil.
	Errorf(err error, format string, args ...interface{})
}

type contextKey struct{}

// FromContext retrieves the logger attached to ctx, or panics if there is
// none.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	panic("no logger in context")
}

// ContextWithLogger attaches logger to ctx for retrieval with FromContext.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// ContextWithNewDefaultLogger attaches a debug-level stderr logger to ctx.
func ContextWithNewDefaultLogger(ctx context.Context) context.Context {
	return ContextWithLogger(ctx, Configure(os.Stderr, Config{Level: Debug}))
}
