// Package gateway is the HTTP client for the remote messaging gateway that
// owns instances, chats and scheduled messages.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/zulandar/wadash/internal/models"
)

// Gateway is the set of remote operations the dashboard and CLI depend on.
type Gateway interface {
	Instances(ctx context.Context) ([]models.Instance, error)
	CreateInstance(ctx context.Context, name string) error
	ConnectInstance(ctx context.Context, name string) (*models.ConnectResult, error)
	LogoutInstance(ctx context.Context, name string) error
	DeleteInstance(ctx context.Context, name string) error
	Chats(ctx context.Context, instance string) ([]models.Chat, error)
	Schedules(ctx context.Context) ([]models.ScheduledMessage, error)
	CreateSchedule(ctx context.Context, req models.ScheduleRequest) error
	DeleteSchedule(ctx context.Context, id string) error
}

// ErrOperationFailed is matched by every error the client returns.
var ErrOperationFailed = errors.New("gateway: operation failed")

// Error describes a failed remote call. Status is zero when the request
// never produced a response.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrOperationFailed) hold for every *Error.
func (e *Error) Is(target error) bool { return target == ErrOperationFailed }
