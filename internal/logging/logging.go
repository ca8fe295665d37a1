package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

var (
	disabled atomic.Bool
	level    = new(slog.LevelVar)
	logger   atomic.Pointer[slog.Logger]
)

func init() {
	SetOutput(os.Stdout)
}

// SetOutput replaces the destination of all log output.
func SetOutput(w io.Writer) {
	logger.Store(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	})))
}

// SetLevel changes the minimum level that is written.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetVerbose enables debug output.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// Disable turns off all logging
func Disable() {
	disabled.Store(true)
}

// Enable turns logging back on
func Enable() {
	disabled.Store(false)
}

// Slog returns the underlying structured logger.
func Slog() *slog.Logger {
	return logger.Load()
}

func write(l slog.Level, msg string, attrs ...any) {
	if disabled.Load() {
		return
	}
	logger.Load().Log(context.Background(), l, msg, attrs...)
}

// Info logs an info message
func Info(v ...any) {
	write(slog.LevelInfo, fmt.Sprint(v...))
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	write(slog.LevelInfo, fmt.Sprintf(format, v...))
}

// Error logs an error message
func Error(v ...any) {
	write(slog.LevelError, fmt.Sprint(v...))
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	write(slog.LevelError, fmt.Sprintf(format, v...))
}

// Warn logs a warning message
func Warn(v ...any) {
	write(slog.LevelWarn, fmt.Sprint(v...))
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	write(slog.LevelWarn, fmt.Sprintf(format, v...))
}

// Debug logs a debug message
func Debug(v ...any) {
	write(slog.LevelDebug, fmt.Sprint(v...))
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	write(slog.LevelDebug, fmt.Sprintf(format, v...))
}

// Logger carries request-scoped attributes and can be embedded in logic structs.
type Logger struct {
	attrs []any
}

type ctxKey struct{}

// ContextWith returns a context whose Logger will include the given attributes.
func ContextWith(ctx context.Context, attrs ...any) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]any)
	merged := append(append([]any{}, prev...), attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// WithContext creates a Logger carrying the attributes stored by ContextWith.
func WithContext(ctx context.Context) Logger {
	attrs, _ := ctx.Value(ctxKey{}).([]any)
	return Logger{attrs: attrs}
}

// Info logs an info message
func (l Logger) Info(v ...any) {
	write(slog.LevelInfo, fmt.Sprint(v...), l.attrs...)
}

// Infof logs a formatted info message
func (l Logger) Infof(format string, v ...any) {
	write(slog.LevelInfo, fmt.Sprintf(format, v...), l.attrs...)
}

// Warnf logs a formatted warning message
func (l Logger) Warnf(format string, v ...any) {
	write(slog.LevelWarn, fmt.Sprintf(format, v...), l.attrs...)
}

// Error logs an error message
func (l Logger) Error(v ...any) {
	write(slog.LevelError, fmt.Sprint(v...), l.attrs...)
}

// Errorf logs a formatted error message
func (l Logger) Errorf(format string, v ...any) {
	write(slog.LevelError, fmt.Sprintf(format, v...), l.attrs...)
}

// Debugf logs a formatted debug message
func (l Logger) Debugf(format string, v ...any) {
	write(slog.LevelDebug, fmt.Sprintf(format, v...), l.attrs...)
}
