package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Insert appends a message to the room history.
func (r *GormMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	l := log.Ctx(ctx)

	model := domain.MessageToModel(msg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Uint(log.FieldRoomID, msg.RoomID).Msg("failed to insert message")
		return err
	}

	msg.ID = model.ID
	msg.SentAt = model.SentAt
	return nil
}

// ListByRoom returns the full room history in insertion order. A room with
// no messages yields an empty slice, not an error.
func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Message, error) {
	l := log.Ctx(ctx)

	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Uint(log.FieldRoomID, roomID).Msg("failed to list messages")
		return nil, result.Error
	}

	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}
	return messages, nil
}

// Ensure interface is satisfied at compile time.
var _ MessageRepository = (*GormMessageRepository)(nil)
