package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// GormParticipantRepository implements ParticipantRepository using GORM.
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewGormParticipantRepository creates a new GORM-based participant repository.
func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

// Insert adds a membership row. Duplicate prevention is the caller's
// contract; the store accepts whatever it is given.
func (r *GormParticipantRepository) Insert(ctx context.Context, roomID uint, userID string) (*domain.Participant, error) {
	l := log.Ctx(ctx)

	model := domain.ParticipantModel{RoomID: roomID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		l.Error().Err(err).Uint(log.FieldRoomID, roomID).Str(log.FieldUserID, userID).Msg("failed to insert participant")
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByRoom returns the current membership snapshot of a room.
func (r *GormParticipantRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Participant, error) {
	l := log.Ctx(ctx)

	var models []domain.ParticipantModel
	result := r.db.WithContext(ctx).Where("room_id = ?", roomID).Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Uint(log.FieldRoomID, roomID).Msg("failed to list participants")
		return nil, result.Error
	}

	participants := make([]domain.Participant, len(models))
	for i, model := range models {
		participants[i] = *model.ToDomain()
	}
	return participants, nil
}

// Delete removes the participation row identified by (roomID, participantID).
func (r *GormParticipantRepository) Delete(ctx context.Context, roomID, participantID uint) error {
	result := r.db.WithContext(ctx).
		Where("room_id = ? AND id = ?", roomID, participantID).
		Delete(&domain.ParticipantModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// DeleteByUser removes the user's own participation row in the room.
func (r *GormParticipantRepository) DeleteByUser(ctx context.Context, roomID uint, userID string) error {
	result := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&domain.ParticipantModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// Exists checks whether the user is currently a member of the room.
func (r *GormParticipantRepository) Exists(ctx context.Context, roomID uint, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ParticipantModel{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure interface is satisfied at compile time.
var _ ParticipantRepository = (*GormParticipantRepository)(nil)
