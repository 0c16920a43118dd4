package domain

import (
	"time"
)

// RoomModel is the GORM model for the rooms table.
//
// PairKey is set only for one-to-one rooms: the sorted "<min>:<max>" user
// pair. Its unique index is what makes concurrent creation of the same pair
// collapse to a single room.
type RoomModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Type        string    `gorm:"type:varchar(20);index;not null"`
	Name        string    `gorm:"type:varchar(200);not null"`
	MemberCount int       `gorm:"not null;default:0"`
	PairKey     *string   `gorm:"type:varchar(73);uniqueIndex"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for RoomModel.
func (RoomModel) TableName() string {
	return "chat_rooms"
}

// ToDomain converts RoomModel to domain Room.
func (m *RoomModel) ToDomain() *Room {
	return &Room{
		ID:          m.ID,
		Type:        RoomType(m.Type),
		Name:        m.Name,
		MemberCount: m.MemberCount,
		CreatedAt:   m.CreatedAt,
	}
}

// RoomToModel converts domain Room to RoomModel.
func RoomToModel(r *Room) *RoomModel {
	return &RoomModel{
		ID:          r.ID,
		Type:        string(r.Type),
		Name:        r.Name,
		MemberCount: r.MemberCount,
		CreatedAt:   r.CreatedAt,
	}
}

// ParticipantModel is the GORM model for the chat_participants table.
// Removing and re-adding a user produces a fresh row with a new ID.
type ParticipantModel struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	RoomID   uint      `gorm:"index:idx_participant_room_user;not null"`
	UserID   string    `gorm:"column:user_id;type:varchar(36);index:idx_participant_room_user;not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ParticipantModel.
func (ParticipantModel) TableName() string {
	return "chat_participants"
}

// ToDomain converts ParticipantModel to domain Participant.
func (m *ParticipantModel) ToDomain() *Participant {
	return &Participant{
		ID:       m.ID,
		RoomID:   m.RoomID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt,
	}
}

// MessageModel is the GORM model for the chat_messages table. Rows are
// append-only; the auto-increment key doubles as the room-scoped ordering.
type MessageModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	RoomID         uint      `gorm:"index;not null"`
	SenderID       string    `gorm:"column:sender_id;type:varchar(36);not null"`
	SenderNickname string    `gorm:"type:varchar(50);not null"`
	Body           string    `gorm:"type:text;not null"`
	SentAt         time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:             m.ID,
		RoomID:         m.RoomID,
		SenderID:       m.SenderID,
		SenderNickname: m.SenderNickname,
		Body:           m.Body,
		SentAt:         m.SentAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:             msg.ID,
		RoomID:         msg.RoomID,
		SenderID:       msg.SenderID,
		SenderNickname: msg.SenderNickname,
		Body:           msg.Body,
		SentAt:         msg.SentAt,
	}
}
