// Package notify carries operator-facing notices (the dashboard's toasts)
// to the feed, the log, the journal and optional chat platforms.
package notify

import (
	"context"
	"time"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Color returns the hex color chat sinks use for the level.
func (l Level) Color() string {
	switch l {
	case LevelSuccess:
		return "#2eb886"
	case LevelError:
		return "#e01e5a"
	default:
		return "#439fe0"
	}
}

// Notice is one transient message shown to the operator.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Action  string    `json:"action,omitempty"` // e.g. "instance.create"
	Target  string    `json:"target,omitempty"` // instance name or schedule id
	At      time.Time `json:"at"`
}

// Success builds a success notice stamped with the current time.
func Success(action, target, message string) Notice {
	return Notice{Level: LevelSuccess, Message: message, Action: action, Target: target, At: time.Now()}
}

// Failure builds an error notice stamped with the current time.
func Failure(action, target, message string) Notice {
	return Notice{Level: LevelError, Message: message, Action: action, Target: target, At: time.Now()}
}

// Info builds an informational notice stamped with the current time.
func Info(action, target, message string) Notice {
	return Notice{Level: LevelInfo, Message: message, Action: action, Target: target, At: time.Now()}
}

// Notifier receives notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notice) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, n Notice) error { return f(ctx, n) }

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Notice) error { return nil })
