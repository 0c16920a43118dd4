package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/notification"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/service"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/middleware"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/response"
)

// Handler handles HTTP requests for the chat service.
type Handler struct {
	chatService    service.ChatService
	feed           notification.Feed
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(chatService service.ChatService, feed notification.Feed, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		chatService:    chatService,
		feed:           feed,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware.RequireAuth())
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("/one-to-one", h.CreateOneToOneRoom)
			rooms.POST("/group", h.CreateGroupRoom)
			rooms.GET("", h.ListRooms)
			rooms.GET("/:id", h.GetRoom)
			rooms.GET("/:id/messages", h.ListMessages)
			rooms.GET("/:id/participants", h.ListParticipants)
			rooms.POST("/:id/invite", h.InviteParticipants)
			rooms.POST("/:id/messages", h.SendMessage)
			rooms.DELETE("/:id/leave", h.LeaveRoom)
			rooms.DELETE("/:id/participants/:participant_id", h.RemoveParticipant)
		}

		api.GET("/notifications", h.ListNotifications)
	}
}

// CreateOneToOneRoom opens (or returns) the one-to-one room with the target
// user.
func (h *Handler) CreateOneToOneRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	var req domain.CreateOneToOneRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind one-to-one room request")
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.chatService.CreateOrGetOneToOneRoom(ctx, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRoom):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, err.Error())
		default:
			l.Error().Err(err).Msg("failed to create one-to-one room")
			response.InternalError(c, "failed to create room")
		}
		return
	}

	response.Created(c, room)
}

// CreateGroupRoom creates a group room with the actor as first member.
func (h *Handler) CreateGroupRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	var req domain.CreateGroupRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind group room request")
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.chatService.CreateGroupRoom(ctx, userID, &req)
	if err != nil {
		l.Error().Err(err).Msg("failed to create group room")
		response.InternalError(c, "failed to create room")
		return
	}

	response.Created(c, room)
}

// ListRooms lists the actor's rooms of the requested type.
func (h *Handler) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	var req domain.ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rooms, err := h.chatService.ListRooms(ctx, userID, domain.RoomType(req.Type))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRoomType) {
			response.BadRequest(c, err.Error())
			return
		}
		l.Error().Err(err).Msg("failed to list rooms")
		response.InternalError(c, "failed to list rooms")
		return
	}

	response.Success(c, rooms)
}

// GetRoom returns a single room with the viewer's display name.
func (h *Handler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	room, err := h.chatService.GetRoom(ctx, userID, roomID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to get room")
			response.InternalError(c, "failed to get room")
		}
		return
	}

	response.Success(c, room)
}

// ListMessages returns a room's full history.
func (h *Handler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(ctx, userID, roomID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to list messages")
			response.InternalError(c, "failed to list messages")
		}
		return
	}

	response.Success(c, messages)
}

// ListParticipants returns a room's membership.
func (h *Handler) ListParticipants(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	participants, err := h.chatService.ListParticipants(ctx, userID, roomID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to list participants")
			response.InternalError(c, "failed to list participants")
		}
		return
	}

	response.Success(c, participants)
}

// InviteParticipants adds listed users to the room.
func (h *Handler) InviteParticipants(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	var req domain.InviteParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.chatService.InviteParticipants(ctx, userID, roomID, req.UserIDs); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to invite participants")
			response.InternalError(c, "failed to invite participants")
		}
		return
	}

	response.Success(c, nil)
}

// SendMessage accepts a message for the room.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	nickname := middleware.GetNickname(c)

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.chatService.SendMessage(ctx, userID, nickname, roomID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to send message")
			response.InternalError(c, "failed to send message")
		}
		return
	}

	response.Created(c, msg)
}

// LeaveRoom removes the actor's own membership.
func (h *Handler) LeaveRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	if err := h.chatService.LeaveRoom(ctx, userID, roomID); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to leave room")
			response.InternalError(c, "failed to leave room")
		}
		return
	}

	response.Success(c, nil)
}

// RemoveParticipant deletes a membership row by participation id.
func (h *Handler) RemoveParticipant(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	participantID, err := strconv.ParseUint(c.Param("participant_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid participant id")
		return
	}

	if err := h.chatService.RemoveParticipant(ctx, userID, roomID, uint(participantID)); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrParticipantNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, err.Error())
		default:
			l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to remove participant")
			response.InternalError(c, "failed to remove participant")
		}
		return
	}

	response.Success(c, nil)
}

// ListNotifications returns the actor's notification feed.
func (h *Handler) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	notifications, err := h.feed.ListByUser(ctx, userID)
	if err != nil {
		l.Error().Err(err).Msg("failed to list notifications")
		response.InternalError(c, "failed to list notifications")
		return
	}

	response.Success(c, notifications)
}

func parseRoomID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return 0, false
	}
	return uint(id), true
}
