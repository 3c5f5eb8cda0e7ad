package schedule

import (
	"context"
	"slices"
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
	MsgFetchInstancesFailed = "Failed to fetch instances"
	MsgFetchChatsFailed     = "Failed to fetch chats"
	MsgFetchFailed          = "Failed to fetch schedules"
	MsgCreated              = "Schedule created successfully"
	MsgCreateFailed         = "Failed to create schedule"
	MsgDeleted              = "Schedule deleted successfully"
	MsgDeleteFailed         = "Failed to delete schedule"
	QuestionDelete          = "Are you sure you want to delete this schedule?"
)

// Notice actions.
const (
	ActionListInstances = "schedule.instances"
	ActionListChats     = "schedule.chats"
	ActionList          = "schedule.list"
	ActionCreate        = "schedule.create"
	ActionDelete        = "schedule.delete"
)

// Composer is the schedule page state for one session: the connected
// instances, the chats of the selected instance, the draft and the list.
type Composer struct {
	gw       gateway.Gateway
	notifier notify.Notifier
	group    singleflight.Group

	mu        sync.Mutex
	instances []string
	selected  string
	chats     []models.Chat
	chatGen   uint64
	draft     Draft
	modalOpen bool
	schedules []models.ScheduledMessage
	loading   bool
	fresh     bool // list was refetched by a mutation and not yet shown
}

// NewComposer creates a Composer. It starts in the loading state.
func NewComposer(gw gateway.Gateway, notifier notify.Notifier) *Composer {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Composer{
		gw:       gw,
		notifier: notifier,
		draft:    NewDraft(""),
		loading:  true,
	}
}

// ComposerState is a point-in-time copy of the composer.
type ComposerState struct {
	Instances []string
	Selected  string
	Chats     []models.Chat
	Draft     Draft
	ModalOpen bool
	Schedules []models.ScheduledMessage
	Loading   bool
}

// State returns a copy of the current state.
func (c *Composer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComposerState{
		Instances: append([]string(nil), c.instances...),
		Selected:  c.selected,
		Chats:     append([]models.Chat(nil), c.chats...),
		Draft:     c.draft,
		ModalOpen: c.modalOpen,
		Schedules: append([]models.ScheduledMessage(nil), c.schedules...),
		Loading:   c.loading,
	}
}

// Draft returns a copy of the draft.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Load fetches connected instances, selecting the first one, and the
// schedule list. Either failure keeps the previous state for that part.
func (c *Composer) Load(ctx context.Context) error {
	instErr := c.LoadInstances(ctx)
	listErr := c.Refresh(ctx)
	if instErr != nil {
		return instErr
	}
	return listErr
}

// Sync runs Load unless a mutation refreshed the list since the last Sync,
// in which case nothing is fetched.
func (c *Composer) Sync(ctx context.Context) error {
	c.mu.Lock()
	fresh := c.fresh
	c.fresh = false
	c.mu.Unlock()
	if fresh {
		return nil
	}
	err := c.Load(ctx)
	c.mu.Lock()
	c.fresh = false
	c.mu.Unlock()
	return err
}

// LoadInstances fetches instances and keeps only connected ones. When no
// instance is selected yet the first one is selected, which loads its
// chats.
func (c *Composer) LoadInstances(ctx context.Context) error {
	list, err := c.gw.Instances(ctx)
	if err != nil {
		c.notify(ctx, notify.Failure(ActionListInstances, "", MsgFetchInstancesFailed))
		return err
	}
	names := make([]string, 0, len(list))
	for _, inst := range list {
		if inst.Status == models.StatusConnected {
			names = append(names, inst.InstanceName)
		}
	}

	c.mu.Lock()
	c.instances = names
	autoSelect := ""
	if len(names) > 0 && !slices.Contains(names, c.selected) {
		autoSelect = names[0]
	}
	c.mu.Unlock()

	if autoSelect != "" {
		return c.SelectInstance(ctx, autoSelect)
	}
	return nil
}

// SelectInstance selects an instance for the draft and fetches its chats.
// The draft's chat is cleared since chat ids belong to one instance. A chat
// response is applied only if no later selection happened meanwhile.
func (c *Composer) SelectInstance(ctx context.Context, name string) error {
	c.mu.Lock()
	if name != c.draft.InstanceName || name != c.selected {
		c.draft.ChatID = ""
	}
	c.selected = name
	c.draft.InstanceName = name
	c.chats = nil
	c.chatGen++
	gen := c.chatGen
	c.mu.Unlock()

	if name == "" {
		return nil
	}

	chats, err := c.gw.Chats(ctx, name)

	c.mu.Lock()
	current := gen == c.chatGen
	if current && err == nil {
		c.chats = chats
	}
	c.mu.Unlock()

	if err != nil {
		if current {
			c.notify(ctx, notify.Failure(ActionListChats, name, MsgFetchChatsFailed))
		}
		return err
	}
	return nil
}

// Refresh fetches the schedule list. On failure the previous list is kept.
func (c *Composer) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do(ActionList, func() (any, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *Composer) refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	list, err := c.gw.Schedules(ctx)

	c.mu.Lock()
	c.loading = false
	if err == nil {
		c.schedules = list
	}
	c.fresh = err == nil
	c.mu.Unlock()

	if err != nil {
		c.notify(ctx, notify.Failure(ActionList, "", MsgFetchFailed))
		return err
	}
	return nil
}

// OpenModal opens the create form.
func (c *Composer) OpenModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modalOpen = true
}

// CloseModal closes the create form. The draft is kept.
func (c *Composer) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modalOpen = false
}

// UpdateDraft applies fn to the draft under the lock.
func (c *Composer) UpdateDraft(fn func(*Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
}

// SetType switches the message type. Values of the now-hidden field are
// retained.
func (c *Composer) SetType(t models.MessageType) {
	c.UpdateDraft(func(d *Draft) { d.Type = t })
}

// SetContent sets the text content.
func (c *Composer) SetContent(s string) {
	c.UpdateDraft(func(d *Draft) { d.Content = s })
}

// SetFileURL sets the media URL.
func (c *Composer) SetFileURL(s string) {
	c.UpdateDraft(func(d *Draft) { d.FileURL = s })
}

// SetFileName sets the media file name.
func (c *Composer) SetFileName(s string) {
	c.UpdateDraft(func(d *Draft) { d.FileName = s })
}

// SetChat sets the target chat.
func (c *Composer) SetChat(id string) {
	c.UpdateDraft(func(d *Draft) { d.ChatID = id })
}

// SetScheduledTime sets the time as entered.
func (c *Composer) SetScheduledTime(s string) {
	c.UpdateDraft(func(d *Draft) { d.ScheduledTime = s })
}

// SetRepeat sets the recurrence.
func (c *Composer) SetRepeat(r models.Repeat) {
	c.UpdateDraft(func(d *Draft) { d.Repeat = r })
}

// Submit validates the draft and creates the schedule. Invalid drafts are
// rejected without any request. On success the form closes, the draft
// resets to the selected instance and the list is refetched once. On
// failure the form and draft are left as they were.
func (c *Composer) Submit(ctx context.Context) error {
	draft := c.Draft()
	if err := draft.Validate(); err != nil {
		return err
	}
	req := draft.Request()

	_, err, _ := c.group.Do(ActionCreate, func() (any, error) {
		if err := c.gw.CreateSchedule(ctx, req); err != nil {
			c.mu.Lock()
			c.modalOpen = true
			c.mu.Unlock()
			c.notify(ctx, notify.Failure(ActionCreate, req.InstanceName, MsgCreateFailed))
			return nil, err
		}
		c.notify(ctx, notify.Success(ActionCreate, req.InstanceName, MsgCreated))

		c.mu.Lock()
		c.modalOpen = false
		c.draft = NewDraft(c.selected)
		c.mu.Unlock()

		_ = c.refresh(ctx)
		return nil, nil
	})
	return err
}

// Delete removes a schedule after the confirmer approves, then refetches
// the list. A declined confirmation returns confirm.ErrDeclined without any
// request.
func (c *Composer) Delete(ctx context.Context, id string, cf confirm.Confirmer) error {
	if err := confirm.Ask(ctx, cf, QuestionDelete); err != nil {
		return err
	}
	_, err, _ := c.group.Do(ActionDelete+":"+id, func() (any, error) {
		if err := c.gw.DeleteSchedule(ctx, id); err != nil {
			c.notify(ctx, notify.Failure(ActionDelete, id, MsgDeleteFailed))
			return nil, err
		}
		c.notify(ctx, notify.Success(ActionDelete, id, MsgDeleted))
		_ = c.refresh(ctx)
		return nil, nil
	})
	return err
}

// Rows derives the presentation of the current schedule list.
func (c *Composer) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]Row, 0, len(c.schedules))
	for _, s := range c.schedules {
		rows = append(rows, RowFor(s))
	}
	return rows
}

// ChatName returns the display name of a chat of the selected instance.
func (c *Composer) ChatName(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.chats {
		if ch.ID == id {
			return ch.Name
		}
	}
	return strings.TrimSpace(id)
}

func (c *Composer) notify(ctx context.Context, n notify.Notice) {
	_ = c.notifier.Notify(ctx, n)
}
