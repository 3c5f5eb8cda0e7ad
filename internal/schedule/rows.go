package schedule

import (
	"github.com/zulandar/wadash/internal/models"
)

// Display layouts for the schedule list.
const (
	DateLayout = "January 2, 2006"
	TimeLayout = "3:04 PM"
)

// Badge classes.
const (
	BadgeSuccess = "success"
	BadgeError   = "error"
	BadgePending = "pending"
)

// StatusBadge maps a schedule status to its badge class. Unknown statuses
// render as pending.
func StatusBadge(status string) string {
	switch status {
	case models.ScheduleStatusSent:
		return BadgeSuccess
	case models.ScheduleStatusFailed:
		return BadgeError
	default:
		return BadgePending
	}
}

// Row is the presentation of one scheduled message.
type Row struct {
	ID        string
	Title     string // chat name, or chat id when the name is unknown
	Instance  string
	Date      string
	Time      string
	Status    string
	Badge     string
	RepeatTag string // empty for one-shot schedules
	Body      string // text content or media file name
	IsMedia   bool
}

// RowFor derives the row for one scheduled message. An unparseable
// scheduled time is shown raw in the date column.
func RowFor(s models.ScheduledMessage) Row {
	r := Row{
		ID:       s.ID,
		Title:    s.ChatName,
		Instance: s.InstanceName,
		Status:   s.Status,
		Badge:    StatusBadge(s.Status),
		IsMedia:  s.Type.IsMedia(),
	}
	if r.Title == "" {
		r.Title = s.ChatID
	}
	if r.Status == "" {
		r.Status = models.ScheduleStatusPending
	}

	if t, err := ParseTime(s.ScheduledTime); err == nil {
		t = t.Local()
		r.Date = t.Format(DateLayout)
		r.Time = t.Format(TimeLayout)
	} else {
		r.Date = s.ScheduledTime
	}

	if s.Repeat != "" && s.Repeat != models.RepeatNone {
		r.RepeatTag = "Repeats " + string(s.Repeat)
	}

	if r.IsMedia {
		r.Body = s.FileName
		if r.Body == "" {
			r.Body = s.FileURL
		}
	} else {
		r.Body = s.Content
	}
	return r
}
