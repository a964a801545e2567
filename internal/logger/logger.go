// Package logger wraps zap for the jobboard client.
package logger

import (
	"go.uber.org/zap"
)

// Logger holds the process-wide zap logger. It starts as a no-op logger so
// components constructed before Init never write to a nil logger.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger backed by zap.NewNop until Init is called.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("debug", "info", ...).
// Output goes to stderr so it does not interleave with the interactive shell.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = zl
	return nil
}
