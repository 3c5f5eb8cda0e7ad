package models

import "time"

// JournalEntry records one operator action and its outcome. It is local
// bookkeeping only; gateway entities are never stored.
type JournalEntry struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Level     string    `gorm:"size:16;index"`
	Action    string    `gorm:"size:64"`
	Target    string    `gorm:"size:128"`
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}
