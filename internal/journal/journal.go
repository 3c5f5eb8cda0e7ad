// Package journal persists operator notices to a local SQL database so the
// activity page survives restarts.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/wadash/internal/config"
	"github.com/zulandar/wadash/internal/db"
	"github.com/zulandar/wadash/internal/models"
	"github.com/zulandar/wadash/internal/notify"
	"gorm.io/gorm"
)

// DefaultLimit is used by Recent when no positive limit is given.
const DefaultLimit = 50

// Journal is a notify.Notifier that stores each notice as a JournalEntry.
type Journal struct {
	db *gorm.DB
}

// New wraps an open, migrated GORM handle.
func New(gdb *gorm.DB) *Journal {
	return &Journal{db: gdb}
}

// Open connects to the configured database and migrates the journal table.
func Open(cfg config.JournalConfig) (*Journal, error) {
	gdb, err := db.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("journal: %w", err)
	}
	return New(gdb), nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return db.Close(j.db)
}

var _ notify.Notifier = (*Journal)(nil)

// Notify records n.
func (j *Journal) Notify(ctx context.Context, n notify.Notice) error {
	at := n.At
	if at.IsZero() {
		at = time.Now()
	}
	entry := models.JournalEntry{
		ID:        uuid.NewString(),
		Level:     string(n.Level),
		Action:    n.Action,
		Target:    n.Target,
		Message:   n.Message,
		CreatedAt: at.UTC(),
	}
	if err := j.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var entries []models.JournalEntry
	err := j.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	return entries, nil
}

// Prune deletes entries created before cutoff and returns how many were
// removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := j.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.JournalEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("journal: prune: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountByLevel returns entry counts per level since the given time.
func (j *Journal) CountByLevel(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Level string
		Count int64
	}
	err := j.db.WithContext(ctx).Model(&models.JournalEntry{}).
		Select("level, COUNT(*) AS count").
		Where("created_at >= ?", since.UTC()).
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("journal: count: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Level] = r.Count
	}
	return out, nil
}
