package models

// MessageType is the kind of payload a scheduled message carries.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeDocument MessageType = "document"
)

// Valid reports whether t is one of the supported message types.
func (t MessageType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeDocument:
		return true
	}
	return false
}

// IsMedia reports whether the type is delivered from a file URL.
func (t MessageType) IsMedia() bool {
	return t == TypeImage || t == TypeDocument
}

// Repeat is the recurrence of a schedule. RepeatNone means one-shot.
type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

// Valid reports whether r is one of the four recurrence values.
func (r Repeat) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// Schedule statuses known today. The gateway may add more; see
// schedule.StatusBadge for how unknown values are presented.
const (
	ScheduleStatusPending = "pending"
	ScheduleStatusSent    = "sent"
	ScheduleStatusFailed  = "failed"
)

// ScheduledMessage is a persisted request to send a message at a future
// time, owned by the gateway.
type ScheduledMessage struct {
	ID            string      `json:"id"`
	InstanceName  string      `json:"instanceName"`
	ChatID        string      `json:"chatId"`
	ChatName      string      `json:"chatName"`
	Content       string      `json:"content,omitempty"`
	Type          MessageType `json:"type"`
	FileURL       string      `json:"fileUrl,omitempty"`
	FileName      string      `json:"fileName,omitempty"`
	ScheduledTime string      `json:"scheduledTime"`
	Repeat        Repeat      `json:"repeat"`
	Status        string      `json:"status"`
}

// ScheduleRequest is the creation payload. Only the fields relevant to Type
// are populated.
type ScheduleRequest struct {
	InstanceName  string      `json:"instanceName"`
	ChatID        string      `json:"chatId"`
	Type          MessageType `json:"type"`
	Content       string      `json:"content,omitempty"`
	FileURL       string      `json:"fileUrl,omitempty"`
	FileName      string      `json:"fileName,omitempty"`
	ScheduledTime string      `json:"scheduledTime"`
	Repeat        Repeat      `json:"repeat"`
}
