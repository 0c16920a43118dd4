package audit

import (
	"context"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// Audit actions for the chat service.
const (
	ActionCreateRoom        = "chat.room.create"
	ActionInviteParticipant = "chat.participant.invite"
	ActionRemoveParticipant = "chat.participant.remove"
	ActionLeaveRoom         = "chat.room.leave"
	ActionSendMessage       = "chat.message.send"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
