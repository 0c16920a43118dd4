package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// GORM v1.25+ wraps these as gorm.ErrDuplicatedKey when TranslateError is on.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// GormRoomRepository implements RoomRepository using GORM.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GORM-based room repository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// CreateWithParticipants creates a room together with its initial members.
func (r *GormRoomRepository) CreateWithParticipants(ctx context.Context, room *domain.Room, pairKey *string, userIDs []string) error {
	l := log.Ctx(ctx)

	model := domain.RoomToModel(room)
	model.PairKey = pairKey

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			p := domain.ParticipantModel{RoomID: model.ID, UserID: userID}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRoom
		}
		l.Error().Err(err).Msg("failed to create room in db")
		return err
	}

	room.ID = model.ID
	room.CreatedAt = model.CreatedAt
	l.Debug().Uint(log.FieldRoomID, room.ID).Msg("room created in db")
	return nil
}

// GetByID retrieves a room by ID.
func (r *GormRoomRepository) GetByID(ctx context.Context, id uint) (*domain.Room, error) {
	l := log.Ctx(ctx)

	var model domain.RoomModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		l.Error().Err(result.Error).Uint(log.FieldRoomID, id).Msg("failed to get room by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// FindOneToOne resolves an existing one-to-one room by its pair key.
func (r *GormRoomRepository) FindOneToOne(ctx context.Context, pairKey string) (*domain.Room, error) {
	l := log.Ctx(ctx)

	var model domain.RoomModel
	result := r.db.WithContext(ctx).First(&model, "pair_key = ?", pairKey)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		l.Error().Err(result.Error).Msg("failed to find one-to-one room by pair key")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// FindByUser lists rooms of the given type containing the user.
func (r *GormRoomRepository) FindByUser(ctx context.Context, userID string, roomType domain.RoomType) ([]domain.Room, error) {
	l := log.Ctx(ctx)

	var models []domain.RoomModel
	result := r.db.WithContext(ctx).
		Joins("JOIN chat_participants ON chat_participants.room_id = chat_rooms.id").
		Where("chat_participants.user_id = ? AND chat_rooms.type = ?", userID, string(roomType)).
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldUserID, userID).Msg("failed to list rooms for user")
		return nil, result.Error
	}

	rooms := make([]domain.Room, len(models))
	for i, model := range models {
		rooms[i] = *model.ToDomain()
	}
	return rooms, nil
}

// UpdateMemberCount adjusts the stored member count by delta.
func (r *GormRoomRepository) UpdateMemberCount(ctx context.Context, roomID uint, delta int) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).
		Model(&domain.RoomModel{}).
		Where("id = ?", roomID).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", delta))
	if result.Error != nil {
		l.Error().Err(result.Error).Uint(log.FieldRoomID, roomID).Msg("failed to update room member count")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Ensure interface is satisfied at compile time.
var _ RoomRepository = (*GormRoomRepository)(nil)
