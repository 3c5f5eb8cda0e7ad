// Package directory holds the instance directory state shared by the
// dashboard and the CLI: the instance list, the create form and the
// per-instance actions, each followed by a refetch from the gateway.
package directory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/zulandar/wadash/internal/confirm"
	"github.com/zulandar/wadash/internal/gateway"
	"github.com/zulandar/wadash/internal/models"
	"github.com/zulandar/wadash/internal/notify"
	"golang.org/x/sync/singleflight"
)

// Operator-facing messages.
const (
	MsgFetchFailed   = "Failed to fetch instances"
	MsgCreated       = "Instance created successfully"
	MsgCreateFailed  = "Failed to create instance"
	MsgConnected     = "Connection initiated"
	MsgConnectFailed = "Failed to connect instance"
	MsgLoggedOut     = "Instance logged out successfully"
	MsgLogoutFailed  = "Failed to logout instance"
	MsgDeleted       = "Instance deleted successfully"
	MsgDeleteFailed  = "Failed to delete instance"
	QuestionDelete   = "Are you sure you want to delete this instance?"
)

// Notice actions.
const (
	ActionList    = "instance.list"
	ActionCreate  = "instance.create"
	ActionConnect = "instance.connect"
	ActionLogout  = "instance.logout"
	ActionDelete  = "instance.delete"
)

// ErrBlankName is returned when creating an instance without a name.
var ErrBlankName = errors.New("directory: instance name is required")

// View is the directory state for one dashboard or CLI session. It never
// updates the list optimistically; every mutation is followed by a refetch.
type View struct {
	gw       gateway.Gateway
	notifier notify.Notifier
	group    singleflight.Group

	mu         sync.Mutex
	instances  []models.Instance
	loading    bool
	createOpen bool
	createName string
	qr         map[string]string // QR payloads from connect, by instance
	fresh      bool              // list was refetched by a mutation and not yet shown
}

// New creates a View. It starts in the loading state until the first Refresh.
func New(gw gateway.Gateway, notifier notify.Notifier) *View {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &View{
		gw:       gw,
		notifier: notifier,
		loading:  true,
		qr:       make(map[string]string),
	}
}

// State is a point-in-time copy of the view.
type State struct {
	Instances  []models.Instance
	Loading    bool
	CreateOpen bool
	CreateName string
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Instances:  append([]models.Instance(nil), v.instances...),
		Loading:    v.loading,
		CreateOpen: v.createOpen,
		CreateName: v.createName,
	}
}

// Instances returns a copy of the last fetched instance list.
func (v *View) Instances() []models.Instance {
	return v.State().Instances
}

// Refresh fetches the instance list. On failure the previous list is kept.
func (v *View) Refresh(ctx context.Context) error {
	_, err, _ := v.group.Do(ActionList, func() (any, error) {
		return nil, v.refresh(ctx)
	})
	return err
}

func (v *View) refresh(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	list, err := v.gw.Instances(ctx)

	v.mu.Lock()
	v.loading = false
	if err == nil {
		v.instances = list
		v.reconcileQR()
	}
	v.fresh = err == nil
	v.mu.Unlock()

	if err != nil {
		v.notify(ctx, notify.Failure(ActionList, "", MsgFetchFailed))
		return err
	}
	return nil
}

// reconcileQR drops remembered QR payloads for instances no longer
// connecting. Caller holds mu.
func (v *View) reconcileQR() {
	live := make(map[string]bool, len(v.instances))
	for _, inst := range v.instances {
		if inst.Status == models.StatusConnecting {
			live[inst.InstanceName] = true
		}
	}
	for name := range v.qr {
		if !live[name] {
			delete(v.qr, name)
		}
	}
}

// Sync refetches the list unless a mutation refreshed it since the last
// Sync, so a page rendered right after a mutation does not fetch twice.
func (v *View) Sync(ctx context.Context) error {
	v.mu.Lock()
	fresh := v.fresh
	v.fresh = false
	v.mu.Unlock()
	if fresh {
		return nil
	}
	if err := v.Refresh(ctx); err != nil {
		return err
	}
	v.mu.Lock()
	v.fresh = false
	v.mu.Unlock()
	return nil
}

// OpenCreate opens the create form.
func (v *View) OpenCreate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.createOpen = true
}

// SetCreateName updates the name typed into the create form.
func (v *View) SetCreateName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.createName = name
}

// CancelCreate closes the create form and clears the name.
func (v *View) CancelCreate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.createOpen = false
	v.createName = ""
}

// Create asks the gateway to create an instance. A blank name is rejected
// without any request. On failure the form stays open with the name kept.
func (v *View) Create(ctx context.Context, name string) error {
	v.mu.Lock()
	v.createName = name
	v.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}

	_, err, _ := v.group.Do(ActionCreate+":"+name, func() (any, error) {
		if err := v.gw.CreateInstance(ctx, name); err != nil {
			v.mu.Lock()
			v.createOpen = true
			v.mu.Unlock()
			v.notify(ctx, notify.Failure(ActionCreate, name, MsgCreateFailed))
			return nil, err
		}
		v.notify(ctx, notify.Success(ActionCreate, name, MsgCreated))
		v.CancelCreate()
		_ = v.refresh(ctx)
		return nil, nil
	})
	return err
}

// Connect starts pairing for an instance and returns the gateway's QR
// payload. The list is refetched once; there is no polling.
func (v *View) Connect(ctx context.Context, name string) (*models.ConnectResult, error) {
	res, err, _ := v.group.Do(ActionConnect+":"+name, func() (any, error) {
		result, err := v.gw.ConnectInstance(ctx, name)
		if err != nil {
			v.notify(ctx, notify.Failure(ActionConnect, name, MsgConnectFailed))
			return nil, err
		}
		if qr := result.PNGBase64(); qr != "" {
			v.mu.Lock()
			v.qr[name] = qr
			v.mu.Unlock()
		}
		v.notify(ctx, notify.Success(ActionConnect, name, MsgConnected))
		_ = v.refresh(ctx)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.ConnectResult), nil
}

// Logout ends an instance's session and refetches the list.
func (v *View) Logout(ctx context.Context, name string) error {
	_, err, _ := v.group.Do(ActionLogout+":"+name, func() (any, error) {
		if err := v.gw.LogoutInstance(ctx, name); err != nil {
			v.notify(ctx, notify.Failure(ActionLogout, name, MsgLogoutFailed))
			return nil, err
		}
		v.notify(ctx, notify.Success(ActionLogout, name, MsgLoggedOut))
		_ = v.refresh(ctx)
		return nil, nil
	})
	return err
}

// Delete removes an instance after the confirmer approves. A declined
// confirmation returns confirm.ErrDeclined without any request.
func (v *View) Delete(ctx context.Context, name string, c confirm.Confirmer) error {
	if err := confirm.Ask(ctx, c, QuestionDelete); err != nil {
		return err
	}
	_, err, _ := v.group.Do(ActionDelete+":"+name, func() (any, error) {
		if err := v.gw.DeleteInstance(ctx, name); err != nil {
			v.notify(ctx, notify.Failure(ActionDelete, name, MsgDeleteFailed))
			return nil, err
		}
		v.notify(ctx, notify.Success(ActionDelete, name, MsgDeleted))
		_ = v.refresh(ctx)
		return nil, nil
	})
	return err
}

func (v *View) notify(ctx context.Context, n notify.Notice) {
	_ = v.notifier.Notify(ctx, n)
}
