// Package logger holds the process-wide zap logger. Components attach
// themselves with WithModule (bootstrap, http, database, maintenance) so log
// lines carry the owning subsystem.
package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var root atomic.Pointer[zap.Logger]

func init() {
	root.Store(zap.NewNop())
}

// Init replaces the no-op logger with a production zap logger at the given
// level. An unrecognised level string falls back to info rather than failing
// startup.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	root.Store(built)
	return nil
}

// WithModule returns a logger tagged with the owning subsystem name.
func WithModule(module string) *zap.Logger {
	return root.Load().With(zap.String("module", module))
}

// Sync flushes buffered entries. Called once during shutdown.
func Sync() error {
	return root.Load().Sync()
}
