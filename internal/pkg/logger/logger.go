// Package logger is a process-wide zap logger with context-first helpers.
// Fields attached to a context with With are added to every line logged with it.
package logger

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var global atomic.Pointer[zap.SugaredLogger]

func init() {
	global.Store(zap.NewNop().Sugar())
}

// Init builds the global logger. encoding is "json" or "console".
func Init(level, encoding, service string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	if encoding == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Set(l.Sugar().With("service", service))
	return nil
}

// Set replaces the global logger (tests use zaptest or zap.NewNop).
func Set(l *zap.SugaredLogger) { global.Store(l) }

func Sync() { _ = global.Load().Sync() }

// With returns a context whose log lines carry the key/value pairs.
func With(ctx context.Context, kv ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, append(fields(ctx), kv...))
}

func fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(ctxKey{}).([]any)
	return append([]any(nil), f...)
}

func from(ctx context.Context) *zap.SugaredLogger {
	l := global.Load()
	if f := fields(ctx); len(f) > 0 {
		return l.With(f...)
	}
	return l
}

func Debugf(ctx context.Context, format string, args ...any) { from(ctx).Debugf(format, args...) }
func Infof(ctx context.Context, format string, args ...any)  { from(ctx).Infof(format, args...) }
func Warnf(ctx context.Context, format string, args ...any)  { from(ctx).Warnf(format, args...) }
func Errorf(ctx context.Context, format string, args ...any) { from(ctx).Errorf(format, args...) }

// Fatal logs err and exits.
func Fatal(ctx context.Context, err error) { from(ctx).Fatal(err) }
