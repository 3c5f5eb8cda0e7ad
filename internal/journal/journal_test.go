package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/zulandar/wadash/internal/config"
	"github.com/zulandar/wadash/internal/notify"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(config.JournalConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "journal.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.JournalConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestNotifyAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	for i, msg := range []string{"Instance created successfully", "Failed to connect instance", "Connection initiated"} {
		n := notify.Success("instance.create", "sales", msg)
		n.At = base.Add(time.Duration(i) * time.Minute)
		if i == 1 {
			n.Level = notify.LevelError
		}
		if err := j.Notify(ctx, n); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	entries, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "Connection initiated" {
		t.Errorf("newest = %q, want Connection initiated", entries[0].Message)
	}
	if entries[1].Level != "error" {
		t.Errorf("second level = %q, want error", entries[1].Level)
	}
	if len(entries[0].ID) != 36 {
		t.Errorf("ID = %q, want a uuid", entries[0].ID)
	}
	if entries[0].Target != "sales" || entries[0].Action != "instance.create" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestNotify_ZeroTimeStamped(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	if err := j.Notify(ctx, notify.Notice{Level: notify.LevelInfo, Message: "m"}); err != nil {
		t.Fatal(err)
	}
	entries, _ := j.Recent(ctx, 0)
	if len(entries) != 1 || entries[0].CreatedAt.IsZero() {
		t.Errorf("entries = %+v, want one stamped entry", entries)
	}
}

func TestPruneAndCount(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	now := time.Now()

	old := notify.Failure("schedule.create", "", "Failed to create schedule")
	old.At = now.Add(-48 * time.Hour)
	fresh := notify.Success("schedule.create", "", "Schedule created successfully")
	fresh.At = now
	for _, n := range []notify.Notice{old, fresh} {
		if err := j.Notify(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := j.CountByLevel(ctx, now.Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("CountByLevel: %v", err)
	}
	if counts["error"] != 1 || counts["success"] != 1 {
		t.Errorf("counts = %v, want one error and one success", counts)
	}

	removed, err := j.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	entries, _ := j.Recent(ctx, 10)
	if len(entries) != 1 || entries[0].Level != "success" {
		t.Errorf("remaining = %+v", entries)
	}
}
