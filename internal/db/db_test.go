package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/zulandar/wadash/internal/config"
	"github.com/zulandar/wadash/internal/models"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite", "sqlite"},
		{"mysql", "mysql"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(tt.driver, "x")
			if err != nil {
				t.Fatalf("Dialector(%q): %v", tt.driver, err)
			}
			if d.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.want)
			}
		})
	}
}

func TestDialector_Unsupported(t *testing.T) {
	_, err := Dialector("oracle", "x")
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), `unsupported driver "oracle"`) {
		t.Errorf("error = %q", err.Error())
	}
}

func TestConnectAndMigrate_SQLiteMemory(t *testing.T) {
	gdb, err := Connect(config.JournalConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "journal.db")})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer Close(gdb)

	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if !gdb.Migrator().HasTable(&models.JournalEntry{}) {
		t.Error("journal_entries table not created")
	}
}

func TestAllModels(t *testing.T) {
	if got := len(AllModels()); got != 1 {
		t.Errorf("len(AllModels()) = %d, want 1", got)
	}
}
