package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Log(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	// Named returns a logger tagged with the component name.
	Named(component string) Logger
}

type logger struct {
	zl *zap.SugaredLogger
}

// NewLogger builds a production zap logger at the given level, every entry
// carries the node username.
func NewLogger(username, level string) (Logger, error) {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if level == "" {
		level = "info"
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level.SetLevel(lvl)

	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return FromZap(zl.With(zap.String("username", username))), nil
}

func FromZap(zl *zap.Logger) Logger {
	return &logger{zl: zl.Sugar()}
}

func NewNop() Logger {
	return FromZap(zap.NewNop())
}

func (l *logger) Log(format string, args ...interface{}) {
	l.zl.Infof(format, args...)
}

func (l *logger) Warn(format string, args ...interface{}) {
	l.zl.Warnf(format, args...)
}

func (l *logger) Error(format string, args ...interface{}) {
	l.zl.Errorf(format, args...)
}

func (l *logger) Named(component string) Logger {
	return &logger{zl: l.zl.Named(component)}
}
