package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/zulandar/wadash/internal/models"
)

// Operation names used by MockGateway for call counting and fault injection.
const (
	OpInstances       = "Instances"
	OpCreateInstance  = "CreateInstance"
	OpConnectInstance = "ConnectInstance"
	OpLogoutInstance  = "LogoutInstance"
	OpDeleteInstance  = "DeleteInstance"
	OpChats           = "Chats"
	OpSchedules       = "Schedules"
	OpCreateSchedule  = "CreateSchedule"
	OpDeleteSchedule  = "DeleteSchedule"
)

// MockGateway implements Gateway in memory for testing. It counts calls per
// operation, records mutation arguments and can be told to fail any
// operation.
type MockGateway struct {
	mu        sync.Mutex
	instances []models.Instance
	chats     map[string][]models.Chat
	schedules []models.ScheduledMessage
	connect   models.ConnectResult
	failures  map[string]error
	hooks     map[string]func(args ...string)
	calls     map[string]int
	created   []models.ScheduleRequest
	args      map[string][]string
}

// NewMockGateway creates an empty MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		chats:    make(map[string][]models.Chat),
		failures: make(map[string]error),
		hooks:    make(map[string]func(args ...string)),
		calls:    make(map[string]int),
		args:     make(map[string][]string),
	}
}

var _ Gateway = (*MockGateway)(nil)

// --- Test helpers ---

// SetInstances replaces the instance list returned by Instances.
func (m *MockGateway) SetInstances(instances ...models.Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances = append([]models.Instance(nil), instances...)
}

// SetChats sets the chats returned for one instance.
func (m *MockGateway) SetChats(instance string, chats ...models.Chat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[instance] = append([]models.Chat(nil), chats...)
}

// SetSchedules replaces the schedule list returned by Schedules.
func (m *MockGateway) SetSchedules(schedules ...models.ScheduledMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules = append([]models.ScheduledMessage(nil), schedules...)
}

// SetConnectResult sets the payload returned by ConnectInstance.
func (m *MockGateway) SetConnectResult(r models.ConnectResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connect = r
}

// Fail makes op return err until cleared with a nil err.
func (m *MockGateway) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// OnCall registers fn to run, outside the lock, whenever op is invoked.
func (m *MockGateway) OnCall(op string, fn func(args ...string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[op] = fn
}

// Calls returns how many times op has been invoked.
func (m *MockGateway) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of invocations across all operations.
func (m *MockGateway) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// Args returns the name or id argument of every invocation of op, in order.
func (m *MockGateway) Args(op string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.args[op]...)
}

// CreatedSchedules returns every request passed to CreateSchedule.
func (m *MockGateway) CreatedSchedules() []models.ScheduleRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ScheduleRequest(nil), m.created...)
}

// record counts the call, runs any hook and returns the injected failure.
func (m *MockGateway) record(op string, args ...string) error {
	m.mu.Lock()
	m.calls[op]++
	m.args[op] = append(m.args[op], args...)
	hook := m.hooks[op]
	m.mu.Unlock()

	if hook != nil {
		hook(args...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[op]; err != nil {
		return &Error{Op: op, Status: 500, Err: err}
	}
	return nil
}

// --- Gateway ---

func (m *MockGateway) Instances(ctx context.Context) ([]models.Instance, error) {
	if err := m.record(OpInstances); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Instance(nil), m.instances...), nil
}

func (m *MockGateway) CreateInstance(ctx context.Context, name string) error {
	if err := m.record(OpCreateInstance, name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances = append(m.instances, models.Instance{InstanceName: name, Status: models.StatusDisconnected})
	return nil
}

func (m *MockGateway) ConnectInstance(ctx context.Context, name string) (*models.ConnectResult, error) {
	if err := m.record(OpConnectInstance, name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.connect
	for i := range m.instances {
		if m.instances[i].InstanceName == name {
			m.instances[i].Status = models.StatusConnecting
			m.instances[i].QRCode = r.PNGBase64()
		}
	}
	return &r, nil
}

func (m *MockGateway) LogoutInstance(ctx context.Context, name string) error {
	if err := m.record(OpLogoutInstance, name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.instances {
		if m.instances[i].InstanceName == name {
			m.instances[i].Status = models.StatusDisconnected
			m.instances[i].QRCode = ""
		}
	}
	return nil
}

func (m *MockGateway) DeleteInstance(ctx context.Context, name string) error {
	if err := m.record(OpDeleteInstance, name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.instances[:0]
	for _, inst := range m.instances {
		if inst.InstanceName != name {
			kept = append(kept, inst)
		}
	}
	m.instances = kept
	return nil
}

func (m *MockGateway) Chats(ctx context.Context, instance string) ([]models.Chat, error) {
	if err := m.record(OpChats, instance); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Chat(nil), m.chats[instance]...), nil
}

func (m *MockGateway) Schedules(ctx context.Context) ([]models.ScheduledMessage, error) {
	if err := m.record(OpSchedules); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ScheduledMessage(nil), m.schedules...), nil
}

func (m *MockGateway) CreateSchedule(ctx context.Context, req models.ScheduleRequest) error {
	if err := m.record(OpCreateSchedule, req.ChatID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, req)
	m.schedules = append(m.schedules, models.ScheduledMessage{
		ID:            fmt.Sprintf("sched-%d", len(m.created)),
		InstanceName:  req.InstanceName,
		ChatID:        req.ChatID,
		Content:       req.Content,
		Type:          req.Type,
		FileURL:       req.FileURL,
		FileName:      req.FileName,
		ScheduledTime: req.ScheduledTime,
		Repeat:        req.Repeat,
		Status:        models.ScheduleStatusPending,
	})
	return nil
}

func (m *MockGateway) DeleteSchedule(ctx context.Context, id string) error {
	if err := m.record(OpDeleteSchedule, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.schedules[:0]
	for _, s := range m.schedules {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.schedules = kept
	return nil
}
