package domain

import "time"

// Participant is the membership relation between a user and a room.
type Participant struct {
	ID       uint      `json:"id"`
	RoomID   uint      `json:"room_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
