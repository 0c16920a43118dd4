package repository

import (
	"context"
	"errors"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrDuplicateRoom       = errors.New("one-to-one room already exists for this pair")
)

// RoomRepository defines the interface for room persistence.
type RoomRepository interface {
	// CreateWithParticipants inserts the room and its initial participants in
	// one transaction so a room never exists without members. A one-to-one
	// room whose pair key already exists fails with ErrDuplicateRoom.
	CreateWithParticipants(ctx context.Context, room *domain.Room, pairKey *string, userIDs []string) error
	GetByID(ctx context.Context, id uint) (*domain.Room, error)
	// FindOneToOne resolves an existing one-to-one room by its pair key.
	FindOneToOne(ctx context.Context, pairKey string) (*domain.Room, error)
	// FindByUser lists rooms of the given type containing the user,
	// store-provided ordering.
	FindByUser(ctx context.Context, userID string, roomType domain.RoomType) ([]domain.Room, error)
	// UpdateMemberCount adjusts the stored member count by delta.
	UpdateMemberCount(ctx context.Context, roomID uint, delta int) error
}

// ParticipantRepository defines the interface for membership persistence.
type ParticipantRepository interface {
	Insert(ctx context.Context, roomID uint, userID string) (*domain.Participant, error)
	ListByRoom(ctx context.Context, roomID uint) ([]domain.Participant, error)
	// Delete removes the participation row identified by (roomID, participantID).
	Delete(ctx context.Context, roomID, participantID uint) error
	// DeleteByUser removes the user's own participation row in the room.
	DeleteByUser(ctx context.Context, roomID uint, userID string) error
	Exists(ctx context.Context, roomID uint, userID string) (bool, error)
}

// MessageRepository defines the interface for message persistence.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	// ListByRoom returns the full room history in insertion order.
	ListByRoom(ctx context.Context, roomID uint) ([]domain.Message, error)
}
