package directory

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// UserModel is a read-only view of the shared users table.
type UserModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Username  string    `gorm:"type:varchar(50);not null"`
	Nickname  string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// GormDirectory implements Directory against the shared users table.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a new GORM-backed identity directory.
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// GetProfile returns the profile attributes for a user.
func (d *GormDirectory) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	l := log.Ctx(ctx)

	var model UserModel
	result := d.db.WithContext(ctx).First(&model, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldUserID, userID).Msg("failed to get profile")
		return nil, result.Error
	}

	return &domain.Profile{
		UserID:   model.ID,
		Username: model.Username,
		Nickname: model.Nickname,
	}, nil
}

// Ensure interface is satisfied at compile time.
var _ Directory = (*GormDirectory)(nil)
