package service

import (
	"context"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
)

// ChatService defines the interface for chat business logic.
type ChatService interface {
	// CreateOrGetOneToOneRoom returns the single one-to-one room for the
	// actor/target pair, creating it if needed. Concurrent calls for the
	// same pair converge on one room.
	CreateOrGetOneToOneRoom(ctx context.Context, actorID string, req *domain.CreateOneToOneRoomRequest) (*domain.RoomResponse, error)
	CreateGroupRoom(ctx context.Context, actorID string, req *domain.CreateGroupRoomRequest) (*domain.RoomResponse, error)
	GetRoom(ctx context.Context, actorID string, roomID uint) (*domain.RoomResponse, error)
	// ListRooms returns the actor's rooms of the given type. One-to-one
	// rooms carry viewer-relative display names.
	ListRooms(ctx context.Context, actorID string, roomType domain.RoomType) ([]domain.RoomResponse, error)
	ListParticipants(ctx context.Context, actorID string, roomID uint) ([]domain.Participant, error)
	ListMessages(ctx context.Context, actorID string, roomID uint) ([]domain.Message, error)
	// InviteParticipants adds each listed user to the room and notifies
	// them. Users already in the room are skipped; partial failures do not
	// roll back earlier additions.
	InviteParticipants(ctx context.Context, actorID string, roomID uint, userIDs []string) error
	// RemoveParticipant deletes the membership row without notifying the
	// removed user.
	RemoveParticipant(ctx context.Context, actorID string, roomID, participantID uint) error
	LeaveRoom(ctx context.Context, actorID string, roomID uint) error
	// SendMessage persists the message, publishes it to the room's topic and
	// fans out notifications to every other participant.
	SendMessage(ctx context.Context, actorID, actorNickname string, roomID uint, req *domain.SendMessageRequest) (*domain.Message, error)
}
