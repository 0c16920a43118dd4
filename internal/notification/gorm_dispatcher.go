package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	UserID      string    `gorm:"column:user_id;type:varchar(36);index:idx_notification_target;not null"`
	Category    string    `gorm:"type:varchar(30);index:idx_notification_target;not null"`
	Text        string    `gorm:"type:varchar(255);not null"`
	ReferenceID uint      `gorm:"index:idx_notification_target;not null"`
	UnreadCount int       `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for NotificationModel.
func (NotificationModel) TableName() string {
	return "notifications"
}

func (m *NotificationModel) toDomain() *Notification {
	return &Notification{
		ID:          m.ID,
		UserID:      m.UserID,
		Category:    m.Category,
		Text:        m.Text,
		ReferenceID: m.ReferenceID,
		UnreadCount: m.UnreadCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// GormDispatcher implements Dispatcher backed by the notifications table.
type GormDispatcher struct {
	db *gorm.DB
}

// NewGormDispatcher creates a new GORM-backed notification dispatcher.
func NewGormDispatcher(db *gorm.DB) *GormDispatcher {
	return &GormDispatcher{db: db}
}

// CreateOrUpdateChatNotification collapses repeated chat notifications for
// the same (user, room) into one unread record.
func (d *GormDispatcher) CreateOrUpdateChatNotification(ctx context.Context, userID, roomName string, roomID uint) error {
	l := log.Ctx(ctx)

	text := fmt.Sprintf("New message in %s", roomName)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing NotificationModel
		result := tx.Where("user_id = ? AND category = ? AND reference_id = ?", userID, CategoryChat, roomID).
			First(&existing)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return tx.Create(&NotificationModel{
					UserID:      userID,
					Category:    CategoryChat,
					Text:        text,
					ReferenceID: roomID,
					UnreadCount: 1,
				}).Error
			}
			return result.Error
		}

		return tx.Model(&existing).Updates(map[string]interface{}{
			"text":         text,
			"unread_count": gorm.Expr("unread_count + 1"),
		}).Error
	})
	if err != nil {
		l.Error().Err(err).Str(log.FieldRecipientID, userID).Uint(log.FieldRoomID, roomID).Msg("failed to upsert chat notification")
		return err
	}
	return nil
}

// CreateAndSendNotification inserts a new notification record.
func (d *GormDispatcher) CreateAndSendNotification(ctx context.Context, userID, text, category string, referenceID uint) error {
	l := log.Ctx(ctx)

	model := NotificationModel{
		UserID:      userID,
		Category:    category,
		Text:        text,
		ReferenceID: referenceID,
		UnreadCount: 1,
	}
	if err := d.db.WithContext(ctx).Create(&model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldRecipientID, userID).Msg("failed to create notification")
		return err
	}
	return nil
}

// ListByUser returns a user's notifications, newest first.
func (d *GormDispatcher) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	var models []NotificationModel
	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	notifications := make([]Notification, len(models))
	for i, model := range models {
		notifications[i] = *model.toDomain()
	}
	return notifications, nil
}

// Ensure interfaces are satisfied at compile time.
var (
	_ Dispatcher = (*GormDispatcher)(nil)
	_ Feed       = (*GormDispatcher)(nil)
)
