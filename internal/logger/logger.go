// Package logger provides structured logging for fundqa on top of zap.
// Services log through the package-level helpers so call sites stay
// short; the binary configures the backing logger once at startup.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	sugar   = zap.NewNop().Sugar()
	verbose bool
)

// Init configures the package logger. Verbose enables debug-level
// console output; otherwise info and above are logged.
func Init(v bool) error {
	cfg := zap.NewDevelopmentConfig()
	if v {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.DisableStacktrace = true

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	sugar = zl.Sugar()
	verbose = v
	return nil
}

// Use replaces the backing logger. Useful for tests.
func Use(zl *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	sugar = zl.Sugar()
}

// SetVerbose records the verbose flag without rebuilding the logger.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

// Debug logs a debug-level message.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(format, args...)
}

// Info logs an info-level message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, args...)
}
