package domain

import (
	"fmt"
	"time"
)

// RoomType represents the kind of a chat room.
type RoomType string

const (
	RoomTypeOneToOne RoomType = "one_to_one"
	RoomTypeGroup    RoomType = "group"
)

// Valid reports whether t is a known room type.
func (t RoomType) Valid() bool {
	return t == RoomTypeOneToOne || t == RoomTypeGroup
}

// Room represents a conversation container.
//
// Name holds the stored display name. It is used verbatim for group rooms;
// for one-to-one rooms it is only a seed value and is recomputed per viewer
// at read time.
type Room struct {
	ID          uint      `json:"id"`
	Type        RoomType  `json:"type"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// PairKey builds the canonical key for an unordered user pair. At most one
// one-to-one room may exist per key; the rooms table enforces this with a
// unique index.
func PairKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%s:%s", userA, userB)
}

// CreateOneToOneRoomRequest represents a one-to-one room creation request.
type CreateOneToOneRoomRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
}

// CreateGroupRoomRequest represents a group room creation request.
type CreateGroupRoomRequest struct {
	Name           string   `json:"name" binding:"required,min=1,max=100"`
	InvitedUserIDs []string `json:"invited_user_ids"`
}

// ListRoomsRequest represents a list rooms request.
type ListRoomsRequest struct {
	Type string `form:"type" binding:"required"`
}

// InviteParticipantsRequest represents an invite request.
type InviteParticipantsRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1"`
}

// RoomResponse represents a room in API responses. Name carries the
// viewer-relative display name for one-to-one rooms.
type RoomResponse struct {
	ID          uint      `json:"id"`
	Type        RoomType  `json:"type"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts Room to RoomResponse with the given display name.
func (r *Room) ToResponse(displayName string) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Type:        r.Type,
		Name:        displayName,
		MemberCount: r.MemberCount,
		CreatedAt:   r.CreatedAt,
	}
}
