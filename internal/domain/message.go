package domain

import "time"

// Message represents an immutable chat message. The sender nickname is
// denormalized at send time so history survives profile changes.
type Message struct {
	ID             uint      `json:"id"`
	RoomID         uint      `json:"room_id"`
	SenderID       string    `json:"sender_id"`
	SenderNickname string    `json:"sender_nickname"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}

// SendMessageRequest represents a send message request.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}
