// Package schedule implements the scheduled-message workflow: composing
// and validating a draft, submitting it to the gateway, and presenting the
// schedule list.
package schedule

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zulandar/wadash/internal/models"
)

// Draft is the in-progress schedule being composed. Fields that do not
// apply to the current Type are kept so switching back restores them, but
// they are never sent.
type Draft struct {
	InstanceName  string
	ChatID        string
	Type          models.MessageType
	Content       string
	FileURL       string
	FileName      string
	ScheduledTime string
	Repeat        models.Repeat
}

// NewDraft returns an empty text draft for instance.
func NewDraft(instance string) Draft {
	return Draft{
		InstanceName: instance,
		Type:         models.TypeText,
		Repeat:       models.RepeatNone,
	}
}

// ValidationError lists every invalid draft field with a reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "schedule: invalid draft: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Validate checks the draft. It returns nil or a *ValidationError.
func (d Draft) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(d.InstanceName) == "" {
		fields["instanceName"] = "an instance is required"
	}
	if strings.TrimSpace(d.ChatID) == "" {
		fields["chatId"] = "a chat is required"
	}

	switch {
	case d.Type == models.TypeText:
		if strings.TrimSpace(d.Content) == "" {
			fields["content"] = "message text is required"
		}
	case d.Type.IsMedia():
		if reason := checkFileURL(d.FileURL); reason != "" {
			fields["fileUrl"] = reason
		}
	default:
		fields["type"] = fmt.Sprintf("unknown message type %q", d.Type)
	}

	if strings.TrimSpace(d.ScheduledTime) == "" {
		fields["scheduledTime"] = "a time is required"
	} else if _, err := ParseTime(d.ScheduledTime); err != nil {
		fields["scheduledTime"] = "not a recognizable date and time"
	}

	if d.Repeat != "" && !d.Repeat.Valid() {
		fields["repeat"] = fmt.Sprintf("unknown repeat %q", d.Repeat)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkFileURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "a file URL is required"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "must be an absolute http(s) URL"
	}
	return ""
}

// Request builds the creation payload. Text drafts carry only content;
// media drafts carry only the file URL and optional file name.
func (d Draft) Request() models.ScheduleRequest {
	repeat := d.Repeat
	if repeat == "" {
		repeat = models.RepeatNone
	}
	req := models.ScheduleRequest{
		InstanceName:  strings.TrimSpace(d.InstanceName),
		ChatID:        strings.TrimSpace(d.ChatID),
		Type:          d.Type,
		ScheduledTime: wireTime(d.ScheduledTime),
		Repeat:        repeat,
	}
	if d.Type.IsMedia() {
		req.FileURL = strings.TrimSpace(d.FileURL)
		req.FileName = strings.TrimSpace(d.FileName)
	} else {
		req.Content = d.Content
	}
	return req
}

// localLayouts are tried before dateparse; datetime-local form inputs
// produce the first two.
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// wireTime keeps RFC 3339 and datetime-local values as entered and
// rewrites anything only dateparse understands as RFC 3339.
func wireTime(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return s
	}
	for _, layout := range localLayouts {
		if _, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return s
		}
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return s
	}
	return t.Format(time.RFC3339)
}

// ParseTime resolves a scheduled time in the local zone. RFC 3339 values
// keep their own offset.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule: parse time %q: %w", s, err)
	}
	return t, nil
}
