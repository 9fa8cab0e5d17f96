package messaging

import (
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// MessageType classifies a user-to-user message
type MessageType string

const (
	MessageEncouragement MessageType = "encouragement"
	MessageGeneral       MessageType = "general"
)

// Message is a one-way note between users. The only mutation after
// creation is the read flag, toggled once.
type Message struct {
	ID         types.ID    `json:"id"`
	FromUserID types.ID    `json:"from"`
	ToUserID   types.ID    `json:"to"`
	Subject    string      `json:"subject"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	SentAt     time.Time   `json:"timestamp"`
	IsRead     bool        `json:"is_read"`
}

// NotificationType classifies a system notification
type NotificationType string

const (
	NotificationReminder NotificationType = "reminder"
	NotificationInfo     NotificationType = "info"
	NotificationSystem   NotificationType = "system"
)

// Notification is a one-way system note to a user (retest reminders,
// sharing notices). Like messages, only the read flag ever changes.
type Notification struct {
	ID        types.ID         `json:"id"`
	UserID    types.ID         `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	CreatedAt time.Time        `json:"timestamp"`
	IsRead    bool             `json:"is_read"`
}
