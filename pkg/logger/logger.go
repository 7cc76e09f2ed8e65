// Package logger provides a simple, clean logging interface.
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// callerSkip drops the internal log helper and the exported level method.
const callerSkip = 2

// Logger defines the logging interface.
type Logger interface {
	// Context-aware variants
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field       { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

type ctxFieldsKey struct{}

// WithFields returns a context whose log lines carry fields.
func WithFields(ctx context.Context, fields ...Field) context.Context {
	prev, _ := ctx.Value(ctxFieldsKey{}).([]Field)
	return context.WithValue(ctx, ctxFieldsKey{}, append(slices.Clip(prev), fields...))
}

// zapLogger implements Logger on top of zap.
type zapLogger struct {
	l *zap.Logger
}

func (z *zapLogger) Named(name string) Logger {
	return &zapLogger{l: z.l.Named(name)}
}

func (z *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (z *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (z *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (z *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.log(ctx, zapcore.WarnLevel, msg, fields)
}

// Fatal logs and exits the process.
func (z *zapLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	z.log(ctx, zapcore.FatalLevel, msg, fields)
}

func (z *zapLogger) log(ctx context.Context, lvl zapcore.Level, msg string, fields []Field) {
	if ce := z.l.Check(lvl, msg); ce != nil {
		ce.Write(convertFields(ctx, fields)...)
	}
}

// convertFields converts context and call fields to zap fields.
func convertFields(ctx context.Context, fields []Field) []zap.Field {
	var scoped []Field
	if ctx != nil {
		scoped, _ = ctx.Value(ctxFieldsKey{}).([]Field)
	}
	out := make([]zap.Field, 0, len(scoped)+len(fields))
	for _, f := range scoped {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var (
	global Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init initializes the global logger writing console lines to stderr.
func Init() error {
	level.SetLevel(zapcore.InfoLevel)
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	InitWithCore(core)
	return nil
}

// InitWithCore initializes the global logger on top of an existing core.
func InitWithCore(core zapcore.Core) {
	global = &zapLogger{l: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(callerSkip))}
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries. Terminals and pipes that cannot be
// synced are not reported.
func Sync() error {
	z, ok := global.(*zapLogger)
	if !ok {
		return nil
	}
	err := z.l.Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return fmt.Errorf("sync logger: %w", err)
}

// SetLevel updates the current logging level for the global logger.
func SetLevel(l zapcore.Level) { level.SetLevel(l) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(lvl string) error {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		SetLevel(zapcore.DebugLevel)
	case "", "info":
		SetLevel(zapcore.InfoLevel)
	case "warn", "warning":
		SetLevel(zapcore.WarnLevel)
	case "error":
		SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level: %s", lvl)
	}
	return nil
}
