package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/wadash/internal/confirm"
	"github.com/zulandar/wadash/internal/gateway"
	"github.com/zulandar/wadash/internal/models"
	"github.com/zulandar/wadash/internal/notify"
)

func newTestComposer(t *testing.T) (*Composer, *gateway.MockGateway, *notify.Feed) {
	t.Helper()
	gw := gateway.NewMockGateway()
	gw.SetInstances(
		models.Instance{InstanceName: "offline", Status: models.StatusDisconnected},
		models.Instance{InstanceName: "sales", Status: models.StatusConnected},
		models.Instance{InstanceName: "support", Status: models.StatusConnected},
	)
	gw.SetChats("sales", models.Chat{ID: "1@s.whatsapp.net", Name: "Ann"})
	gw.SetChats("support", models.Chat{ID: "2@s.whatsapp.net", Name: "Bob"})
	feed := notify.NewFeed(50)
	return NewComposer(gw, feed), gw, feed
}

func lastMessage(t *testing.T, feed *notify.Feed) string {
	t.Helper()
	n, ok := feed.Last()
	if !ok {
		t.Fatal("no notice emitted")
	}
	return n.Message
}

func fillValid(c *Composer) {
	c.SetChat("1@s.whatsapp.net")
	c.SetContent("Good morning")
	c.SetScheduledTime("2030-01-02T09:30")
}

func TestLoad_FiltersConnectedAndSelectsFirst(t *testing.T) {
	c, gw, _ := newTestComposer(t)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := c.State()
	if len(st.Instances) != 2 || st.Instances[0] != "sales" {
		t.Errorf("Instances = %v, want [sales support]", st.Instances)
	}
	if st.Selected != "sales" || st.Draft.InstanceName != "sales" {
		t.Errorf("Selected = %q Draft.InstanceName = %q", st.Selected, st.Draft.InstanceName)
	}
	if len(st.Chats) != 1 || st.Chats[0].Name != "Ann" {
		t.Errorf("Chats = %+v", st.Chats)
	}
	if gw.Calls(gateway.OpSchedules) != 1 {
		t.Errorf("schedule fetches = %d, want 1", gw.Calls(gateway.OpSchedules))
	}
	if st.Loading {
		t.Error("Loading should be cleared")
	}
}

func TestLoad_NoConnectedInstances(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.SetInstances(models.Instance{InstanceName: "x", Status: models.StatusConnecting})
	c := NewComposer(gw, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st := c.State(); st.Selected != "" || len(st.Instances) != 0 {
		t.Errorf("state = %+v, want nothing selected", st)
	}
	if gw.Calls(gateway.OpChats) != 0 {
		t.Error("chats should not be fetched without a selection")
	}
}

func TestLoad_Failures(t *testing.T) {
	c, gw, feed := newTestComposer(t)
	gw.Fail(gateway.OpInstances, errors.New("down"))
	gw.Fail(gateway.OpSchedules, errors.New("down"))

	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	msgs := map[string]bool{}
	for _, n := range feed.Drain() {
		msgs[n.Message] = true
	}
	if !msgs[MsgFetchInstancesFailed] || !msgs[MsgFetchFailed] {
		t.Errorf("notices = %v", msgs)
	}
}

func TestSelectInstance_ClearsChat(t *testing.T) {
	c, _, _ := newTestComposer(t)
	ctx := context.Background()
	_ = c.Load(ctx)
	c.SetChat("1@s.whatsapp.net")

	if err := c.SelectInstance(ctx, "support"); err != nil {
		t.Fatalf("SelectInstance: %v", err)
	}
	st := c.State()
	if st.Draft.ChatID != "" {
		t.Errorf("ChatID = %q, want cleared after switching instance", st.Draft.ChatID)
	}
	if st.Draft.InstanceName != "support" || len(st.Chats) != 1 || st.Chats[0].Name != "Bob" {
		t.Errorf("state = %+v", st)
	}
}

func TestSelectInstance_StaleResponseIgnored(t *testing.T) {
	c, gw, _ := newTestComposer(t)
	ctx := context.Background()

	// While sales' chats are in flight, the operator switches to support.
	gw.OnCall(gateway.OpChats, func(args ...string) {
		if len(args) == 1 && args[0] == "sales" {
			gw.OnCall(gateway.OpChats, nil)
			_ = c.SelectInstance(ctx, "support")
		}
	})
	_ = c.SelectInstance(ctx, "sales")

	st := c.State()
	if st.Selected != "support" {
		t.Fatalf("Selected = %q, want support", st.Selected)
	}
	if len(st.Chats) != 1 || st.Chats[0].Name != "Bob" {
		t.Errorf("Chats = %+v, want support's chats only", st.Chats)
	}
}

func TestSelectInstance_ChatFailure(t *testing.T) {
	c, gw, feed := newTestComposer(t)
	gw.Fail(gateway.OpChats, errors.New("down"))
	if err := c.SelectInstance(context.Background(), "sales"); err == nil {
		t.Fatal("expected error")
	}
	if got := lastMessage(t, feed); got != MsgFetchChatsFailed {
		t.Errorf("notice = %q, want %q", got, MsgFetchChatsFailed)
	}
}

func TestSetType_RetainsHiddenField(t *testing.T) {
	c, _, _ := newTestComposer(t)
	c.SetContent("hello")
	c.SetType(models.TypeImage)
	c.SetFileURL("https://cdn.example.com/a.png")
	c.SetType(models.TypeText)

	d := c.Draft()
	if d.Content != "hello" || d.FileURL != "https://cdn.example.com/a.png" {
		t.Errorf("draft = %+v, want both values retained", d)
	}
	if req := d.Request(); req.FileURL != "" {
		t.Errorf("text request carries FileURL %q", req.FileURL)
	}
}

func TestSubmit_InvalidNoRequest(t *testing.T) {
	c, gw, _ := newTestComposer(t)
	_ = c.Load(context.Background())
	before := gw.TotalCalls()

	err := c.Submit(context.Background())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if gw.TotalCalls() != before {
		t.Errorf("gateway calls went from %d to %d", before, gw.TotalCalls())
	}
}

func TestSubmit_Success(t *testing.T) {
	c, gw, feed := newTestComposer(t)
	ctx := context.Background()
	_ = c.Load(ctx)
	c.OpenModal()
	fillValid(c)
	c.SetRepeat(models.RepeatWeekly)
	listBefore := gw.Calls(gateway.OpSchedules)

	if err := c.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	created := gw.CreatedSchedules()
	if len(created) != 1 {
		t.Fatalf("created = %d, want 1", len(created))
	}
	if created[0].InstanceName != "sales" || created[0].Repeat != models.RepeatWeekly {
		t.Errorf("request = %+v", created[0])
	}
	if got := gw.Calls(gateway.OpSchedules) - listBefore; got != 1 {
		t.Errorf("refetches = %d, want 1", got)
	}
	st := c.State()
	if st.ModalOpen {
		t.Error("modal should close on success")
	}
	if st.Draft != NewDraft("sales") {
		t.Errorf("draft = %+v, want reset seeded with sales", st.Draft)
	}
	if len(c.Rows()) != 1 {
		t.Errorf("rows = %d, want 1", len(c.Rows()))
	}
	if got := lastMessage(t, feed); got != MsgCreated {
		t.Errorf("notice = %q, want %q", got, MsgCreated)
	}
}

func TestSubmit_DuplicateInFlightSharesRequest(t *testing.T) {
	c, gw, _ := newTestComposer(t)
	ctx := context.Background()
	_ = c.Load(ctx)
	fillValid(c)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	gw.OnCall(gateway.OpCreateSchedule, func(...string) {
		once.Do(func() { close(started) })
		<-release
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = c.Submit(ctx)
	}()
	<-started
	go func() {
		defer wg.Done()
		_ = c.Submit(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := gw.Calls(gateway.OpCreateSchedule); n != 1 {
		t.Errorf("create calls = %d, want 1", n)
	}
	if n := len(gw.CreatedSchedules()); n != 1 {
		t.Errorf("created = %d, want 1", n)
	}
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	c, gw, feed := newTestComposer(t)
	ctx := context.Background()
	_ = c.Load(ctx)
	c.OpenModal()
	fillValid(c)
	draft := c.Draft()
	gw.Fail(gateway.OpCreateSchedule, errors.New("rejected"))
	listBefore := gw.Calls(gateway.OpSchedules)

	if err := c.Submit(ctx); !errors.Is(err, gateway.ErrOperationFailed) {
		t.Fatalf("err = %v, want ErrOperationFailed", err)
	}
	st := c.State()
	if !st.ModalOpen || st.Draft != draft {
		t.Errorf("modal/draft changed on failure: open=%v draft=%+v", st.ModalOpen, st.Draft)
	}
	if gw.Calls(gateway.OpSchedules) != listBefore {
		t.Error("failed submit should not refetch")
	}
	if got := lastMessage(t, feed); got != MsgCreateFailed {
		t.Errorf("notice = %q, want %q", got, MsgCreateFailed)
	}
}

func TestDelete(t *testing.T) {
	c, gw, feed := newTestComposer(t)
	ctx := context.Background()
	gw.SetSchedules(models.ScheduledMessage{ID: "s1"}, models.ScheduledMessage{ID: "s2"})
	_ = c.Refresh(ctx)

	if err := c.Delete(ctx, "s1", confirm.Never); !errors.Is(err, confirm.ErrDeclined) {
		t.Errorf("declined err = %v", err)
	}
	if gw.Calls(gateway.OpDeleteSchedule) != 0 {
		t.Error("declined delete issued a request")
	}

	listBefore := gw.Calls(gateway.OpSchedules)
	if err := c.Delete(ctx, "s1", confirm.Always); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gw.Calls(gateway.OpDeleteSchedule) != 1 || gw.Calls(gateway.OpSchedules)-listBefore != 1 {
		t.Errorf("delete=%d refetch=%d", gw.Calls(gateway.OpDeleteSchedule), gw.Calls(gateway.OpSchedules)-listBefore)
	}
	if rows := c.Rows(); len(rows) != 1 || rows[0].ID != "s2" {
		t.Errorf("rows = %+v", rows)
	}
	if got := lastMessage(t, feed); got != MsgDeleted {
		t.Errorf("notice = %q, want %q", got, MsgDeleted)
	}

	gw.Fail(gateway.OpDeleteSchedule, errors.New("no"))
	_ = c.Delete(ctx, "s2", confirm.Always)
	if got := lastMessage(t, feed); got != MsgDeleteFailed {
		t.Errorf("notice = %q, want %q", got, MsgDeleteFailed)
	}
}

func TestChatName(t *testing.T) {
	c, _, _ := newTestComposer(t)
	_ = c.SelectInstance(context.Background(), "sales")
	if got := c.ChatName("1@s.whatsapp.net"); got != "Ann" {
		t.Errorf("ChatName = %q, want Ann", got)
	}
	if got := c.ChatName("9@s.whatsapp.net"); got != "9@s.whatsapp.net" {
		t.Errorf("ChatName unknown = %q, want id", got)
	}
}

func TestSync_SkipsFetchAfterSubmit(t *testing.T) {
	c, gw, _ := newTestComposer(t)
	ctx := context.Background()
	_ = c.Sync(ctx)
	fillValid(c)
	if err := c.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	before := gw.Calls(gateway.OpSchedules)
	_ = c.Sync(ctx)
	if gw.Calls(gateway.OpSchedules) != before {
		t.Error("sync right after submit should not refetch")
	}
	_ = c.Sync(ctx)
	if gw.Calls(gateway.OpSchedules) != before+1 {
		t.Error("later sync should refetch")
	}
}
