package notify

import (
	"context"

	"go.uber.org/zap"
)

// Logger writes notices to a zap logger. Error notices log at warn level
// since the failure was already handled and shown to the operator.
type Logger struct {
	log *zap.Logger
}

// NewLogger creates a Logger sink. A nil logger uses the zap global.
func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) logger() *zap.Logger {
	if l.log != nil {
		return l.log
	}
	return zap.L()
}

// Notify logs n.
func (l *Logger) Notify(_ context.Context, n Notice) error {
	fields := []zap.Field{
		zap.String("level", string(n.Level)),
		zap.String("action", n.Action),
		zap.String("target", n.Target),
	}
	if n.Level == LevelError {
		l.logger().Warn(n.Message, fields...)
	} else {
		l.logger().Info(n.Message, fields...)
	}
	return nil
}
