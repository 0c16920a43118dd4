package notification

import (
	"context"
	"time"
)

// Categories for chat-originated notifications.
const (
	CategoryChat       = "chat"
	CategoryChatInvite = "chat_invite"
)

// Notification is one entry in a user's notification feed.
type Notification struct {
	ID          uint      `json:"id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Text        string    `json:"text"`
	ReferenceID uint      `json:"reference_id"`
	UnreadCount int       `json:"unread_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dispatcher creates and updates notification records.
type Dispatcher interface {
	// CreateOrUpdateChatNotification is idempotent per (user, room): repeated
	// messages in one room collapse into a single unread notification whose
	// text and unread count are refreshed.
	CreateOrUpdateChatNotification(ctx context.Context, userID, roomName string, roomID uint) error
	// CreateAndSendNotification always inserts a new record (invite events).
	CreateAndSendNotification(ctx context.Context, userID, text, category string, referenceID uint) error
}

// Feed reads a user's notification feed.
type Feed interface {
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
}
