// Package logging provides the leveled logger shared by the client, the
// state container and the TUI.
//
// The TUI owns the terminal, so log output goes to a rotating file rather
// than stderr. Logging is off unless a level is configured.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level.
type LogLevel int

const (
	// LevelDebug logs verbose debugging information.
	LevelDebug LogLevel = iota
	// LevelInfo logs normal operational messages.
	LevelInfo
	// LevelWarn logs warning messages.
	LevelWarn
	// LevelError logs error messages only.
	LevelError
	// LevelOff disables all logging.
	LevelOff
)

// ParseLevel maps a level name to a LogLevel. Unknown names disable logging.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelOff
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger wraps a sugared zap logger.
type Logger struct {
	sugar *zap.SugaredLogger
	level LogLevel
}

// Nop returns a disabled logger.
func Nop() *Logger {
	return &Logger{level: LevelOff}
}

// NewLogger creates a logger with the given level writing to w.
func NewLogger(level LogLevel, w io.Writer) *Logger {
	if level == LevelOff {
		return Nop()
	}
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		level.zapLevel(),
	)
	return &Logger{
		sugar: zap.New(core).Sugar(),
		level: level,
	}
}

// NewFileLogger creates a logger writing to a size-rotated file.
func NewFileLogger(level LogLevel, path string) *Logger {
	if level == LevelOff || path == "" {
		return Nop()
	}
	return NewLogger(level, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14,
	})
}

// IsEnabled returns true if logging is enabled at any level.
func (l *Logger) IsEnabled() bool {
	return l != nil && l.level != LevelOff && l.sugar != nil
}

// Debug logs a debug message with key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	if l.IsEnabled() {
		l.sugar.Debugw(msg, args...)
	}
}

// Info logs an info message with key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	if l.IsEnabled() {
		l.sugar.Infow(msg, args...)
	}
}

// Warn logs a warning message with key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	if l.IsEnabled() {
		l.sugar.Warnw(msg, args...)
	}
}

// Error logs an error message with key/value pairs.
func (l *Logger) Error(msg string, args ...any) {
	if l.IsEnabled() {
		l.sugar.Errorw(msg, args...)
	}
}

// With returns a new logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	if !l.IsEnabled() {
		return l
	}
	return &Logger{
		sugar: l.sugar.With(args...),
		level: l.level,
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if !l.IsEnabled() {
		return nil
	}
	return l.sugar.Sync()
}

type ctxKey struct{}

// WithContext stores the logger in ctx.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a disabled one.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Nop()
}

// RequestLogger provides helpers for logging HTTP requests.
type RequestLogger struct {
	logger    *Logger
	method    string
	path      string
	startTime time.Time
}

// StartRequest begins timing an HTTP request.
func (l *Logger) StartRequest(method, path string) *RequestLogger {
	if !l.IsEnabled() {
		return &RequestLogger{logger: l}
	}
	l.Debug("request started", "method", method, "path", path)
	return &RequestLogger{
		logger:    l,
		method:    method,
		path:      path,
		startTime: time.Now(),
	}
}

// Success logs a successful request completion.
func (r *RequestLogger) Success(statusCode int) {
	if !r.logger.IsEnabled() {
		return
	}
	r.logger.Info("request completed",
		"method", r.method,
		"path", r.path,
		"status", statusCode,
		"duration_ms", time.Since(r.startTime).Milliseconds(),
	)
}

// Error logs a request error.
func (r *RequestLogger) Error(err error) {
	if !r.logger.IsEnabled() {
		return
	}
	r.logger.Error("request failed",
		"method", r.method,
		"path", r.path,
		"error", err.Error(),
		"duration_ms", time.Since(r.startTime).Milliseconds(),
	)
}
