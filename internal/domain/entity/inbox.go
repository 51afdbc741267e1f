package entity

type InboxKind string

const (
	InboxMessages      InboxKind = "messages"
	InboxNotifications InboxKind = "notifications"
)

func (k InboxKind) Valid() bool {
	return k == InboxMessages || k == InboxNotifications
}

type InboxItem struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Read      bool   `json:"read"`
	Timestamp int64  `json:"timestamp"`
}

type (
	Message      = InboxItem
	Notification = InboxItem
)
