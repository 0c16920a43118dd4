package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/audit"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/broker"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/cache"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/directory"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/naming"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/notification"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/repository"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// oneToOneCreateTimeout bounds a one-to-one create once it is detached from
// the triggering request's context.
const oneToOneCreateTimeout = 5 * time.Second

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotParticipant      = errors.New("you are not a participant of this room")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyParticipant  = errors.New("user is already a participant of this room")
	ErrSelfRoom            = errors.New("cannot open a one-to-one room with yourself")
	ErrInvalidRoomType     = errors.New("invalid room type")
)

// chatServiceImpl implements ChatService interface.
type chatServiceImpl struct {
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	messages     repository.MessageRepository
	dir          directory.Directory
	resolver     *naming.Resolver
	dispatcher   notification.Dispatcher
	publisher    broker.Publisher
	roomCache    cache.RoomCache
	roomTTL      time.Duration

	// pairFlight serializes one-to-one creation per pair key within this
	// process; the unique index covers races across processes.
	pairFlight singleflight.Group
}

// NewChatService creates a new chat service. roomCache may be nil to
// disable the room-record cache.
func NewChatService(
	rooms repository.RoomRepository,
	participants repository.ParticipantRepository,
	messages repository.MessageRepository,
	dir directory.Directory,
	resolver *naming.Resolver,
	dispatcher notification.Dispatcher,
	publisher broker.Publisher,
	roomCache cache.RoomCache,
	roomTTL time.Duration,
) ChatService {
	return &chatServiceImpl{
		rooms:        rooms,
		participants: participants,
		messages:     messages,
		dir:          dir,
		resolver:     resolver,
		dispatcher:   dispatcher,
		publisher:    publisher,
		roomCache:    roomCache,
		roomTTL:      roomTTL,
	}
}

// CreateOrGetOneToOneRoom returns the pair's single one-to-one room,
// creating it if it does not exist yet.
func (s *chatServiceImpl) CreateOrGetOneToOneRoom(ctx context.Context, actorID string, req *domain.CreateOneToOneRoomRequest) (*domain.RoomResponse, error) {
	if req.TargetUserID == actorID {
		return nil, ErrSelfRoom
	}

	pairKey := domain.PairKey(actorID, req.TargetUserID)
	v, err, _ := s.pairFlight.Do(pairKey, func() (interface{}, error) {
		// Every waiter for this pair shares the result, so the create must
		// not inherit the first caller's cancellation.
		createCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), oneToOneCreateTimeout)
		defer cancel()
		return s.findOrCreateOneToOne(createCtx, actorID, req.TargetUserID, pairKey)
	})
	if err != nil {
		return nil, err
	}
	room := v.(*domain.Room)

	name, err := s.resolver.OneToOneName(ctx, room.ID, actorID)
	if err != nil {
		return nil, err
	}

	resp := room.ToResponse(name)
	return &resp, nil
}

func (s *chatServiceImpl) findOrCreateOneToOne(ctx context.Context, actorID, targetID, pairKey string) (*domain.Room, error) {
	room, err := s.rooms.FindOneToOne(ctx, pairKey)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, repository.ErrRoomNotFound) {
		return nil, err
	}

	target, err := s.dir.GetProfile(ctx, targetID)
	if err != nil {
		if errors.Is(err, directory.ErrProfileNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	room = &domain.Room{
		Type:        domain.RoomTypeOneToOne,
		Name:        naming.DisplayName(target.Nickname),
		MemberCount: 2,
	}
	if err := s.rooms.CreateWithParticipants(ctx, room, &pairKey, []string{actorID, targetID}); err != nil {
		if errors.Is(err, repository.ErrDuplicateRoom) {
			// Lost the race to another instance; the winner's room serves
			// both callers.
			return s.rooms.FindOneToOne(ctx, pairKey)
		}
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionCreateRoom, actorID, pairKey, "one-to-one room created")
	return room, nil
}

// CreateGroupRoom creates a group room with the actor as its first member
// and invites the listed users.
func (s *chatServiceImpl) CreateGroupRoom(ctx context.Context, actorID string, req *domain.CreateGroupRoomRequest) (*domain.RoomResponse, error) {
	l := log.Ctx(ctx)

	room := &domain.Room{
		Type:        domain.RoomTypeGroup,
		Name:        req.Name,
		MemberCount: 1,
	}
	if err := s.rooms.CreateWithParticipants(ctx, room, nil, []string{actorID}); err != nil {
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionCreateRoom, actorID, room.Name, "group room created")

	for _, userID := range req.InvitedUserIDs {
		if userID == actorID {
			continue
		}
		if err := s.addParticipant(ctx, room, actorID, userID); err != nil {
			l.Warn().Err(err).
				Uint(log.FieldRoomID, room.ID).
				Str(log.FieldRecipientID, userID).
				Msg("failed to invite user to new group room")
			continue
		}
		room.MemberCount++
	}

	resp := room.ToResponse(room.Name)
	return &resp, nil
}

// GetRoom returns a single room with the actor's display name applied.
func (s *chatServiceImpl) GetRoom(ctx context.Context, actorID string, roomID uint) (*domain.RoomResponse, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, roomID, actorID); err != nil {
		return nil, err
	}

	name := room.Name
	if room.Type == domain.RoomTypeOneToOne {
		name, err = s.resolver.OneToOneName(ctx, room.ID, actorID)
		if err != nil {
			return nil, err
		}
	}

	resp := room.ToResponse(name)
	return &resp, nil
}

// ListRooms lists the actor's rooms of the given type.
func (s *chatServiceImpl) ListRooms(ctx context.Context, actorID string, roomType domain.RoomType) ([]domain.RoomResponse, error) {
	if !roomType.Valid() {
		return nil, ErrInvalidRoomType
	}

	rooms, err := s.rooms.FindByUser(ctx, actorID, roomType)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.RoomResponse, 0, len(rooms))
	for i := range rooms {
		name := rooms[i].Name
		if rooms[i].Type == domain.RoomTypeOneToOne {
			name, err = s.resolver.OneToOneName(ctx, rooms[i].ID, actorID)
			if err != nil {
				return nil, err
			}
		}
		responses = append(responses, rooms[i].ToResponse(name))
	}
	return responses, nil
}

// ListParticipants returns the room's membership for a participant.
func (s *chatServiceImpl) ListParticipants(ctx context.Context, actorID string, roomID uint) ([]domain.Participant, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, roomID, actorID); err != nil {
		return nil, err
	}
	return s.participants.ListByRoom(ctx, roomID)
}

// ListMessages returns the room's full history for a participant.
func (s *chatServiceImpl) ListMessages(ctx context.Context, actorID string, roomID uint) ([]domain.Message, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, roomID, actorID); err != nil {
		return nil, err
	}
	return s.messages.ListByRoom(ctx, roomID)
}

// InviteParticipants adds each listed user to the room. A failed invitee is
// reported but earlier additions stand.
func (s *chatServiceImpl) InviteParticipants(ctx context.Context, actorID string, roomID uint, userIDs []string) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, roomID, actorID); err != nil {
		return err
	}

	var errs []error
	for _, userID := range userIDs {
		if userID == actorID {
			continue
		}
		if err := s.addParticipant(ctx, room, actorID, userID); err != nil {
			if errors.Is(err, ErrAlreadyParticipant) {
				continue
			}
			errs = append(errs, fmt.Errorf("invite %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

// addParticipant inserts the membership row and notifies the invitee.
// Notification and counter failures are logged, never returned.
func (s *chatServiceImpl) addParticipant(ctx context.Context, room *domain.Room, actorID, userID string) error {
	l := log.Ctx(ctx)

	// The store does not constrain (room, user); this check is the
	// membership dedup.
	exists, err := s.participants.Exists(ctx, room.ID, userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyParticipant
	}

	if _, err := s.dir.GetProfile(ctx, userID); err != nil {
		if errors.Is(err, directory.ErrProfileNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if _, err := s.participants.Insert(ctx, room.ID, userID); err != nil {
		return err
	}
	if err := s.rooms.UpdateMemberCount(ctx, room.ID, 1); err != nil {
		l.Warn().Err(err).Uint(log.FieldRoomID, room.ID).Msg("failed to bump room member count")
	}
	s.invalidateRoom(ctx, room.ID)

	audit.LogWithDetail(ctx, audit.ActionInviteParticipant, actorID, userID, "participant invited")

	name := room.Name
	if room.Type == domain.RoomTypeOneToOne {
		name, err = s.resolver.OneToOneName(ctx, room.ID, userID)
		if err != nil {
			l.Warn().Err(err).Uint(log.FieldRoomID, room.ID).Msg("failed to resolve room name for invite notification")
			name = naming.FallbackOneToOneName
		}
	}
	text := fmt.Sprintf("You were invited to %s", name)
	if err := s.dispatcher.CreateAndSendNotification(ctx, userID, text, notification.CategoryChatInvite, room.ID); err != nil {
		l.Error().Err(err).
			Uint(log.FieldRoomID, room.ID).
			Str(log.FieldRecipientID, userID).
			Msg("failed to send invite notification")
	}
	return nil
}

// RemoveParticipant deletes a membership row by its participation id. The
// removed user is not notified.
func (s *chatServiceImpl) RemoveParticipant(ctx context.Context, actorID string, roomID, participantID uint) error {
	l := log.Ctx(ctx)

	if _, err := s.getRoom(ctx, roomID); err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, roomID, actorID); err != nil {
		return err
	}

	if err := s.participants.Delete(ctx, roomID, participantID); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	if err := s.rooms.UpdateMemberCount(ctx, roomID, -1); err != nil {
		l.Warn().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to drop room member count")
	}
	s.invalidateRoom(ctx, roomID)

	audit.LogWithDetail(ctx, audit.ActionRemoveParticipant, actorID, fmt.Sprintf("%d", participantID), "participant removed")
	return nil
}

// LeaveRoom removes the actor's own membership. No notification is sent.
func (s *chatServiceImpl) LeaveRoom(ctx context.Context, actorID string, roomID uint) error {
	l := log.Ctx(ctx)

	if _, err := s.getRoom(ctx, roomID); err != nil {
		return err
	}

	if err := s.participants.DeleteByUser(ctx, roomID, actorID); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return ErrNotParticipant
		}
		return err
	}
	if err := s.rooms.UpdateMemberCount(ctx, roomID, -1); err != nil {
		l.Warn().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to drop room member count")
	}
	s.invalidateRoom(ctx, roomID)

	audit.Log(ctx, audit.ActionLeaveRoom, actorID, "participant left room")
	return nil
}

// SendMessage persists the message, publishes it to the room's routing key
// and fans out notifications to every other participant. A fan-out failure
// for one recipient never affects the others or the accepted message.
func (s *chatServiceImpl) SendMessage(ctx context.Context, actorID, actorNickname string, roomID uint, req *domain.SendMessageRequest) (*domain.Message, error) {
	l := log.Ctx(ctx)

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, roomID, actorID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		RoomID:         room.ID,
		SenderID:       actorID,
		SenderNickname: actorNickname,
		Body:           req.Body,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	// The message is durable from here on; downstream failures are logged,
	// not surfaced.
	if err := s.publisher.Publish(ctx, broker.ExchangeChat, broker.RoomKey(room.ID), msg); err != nil {
		l.Error().Err(err).
			Uint(log.FieldRoomID, room.ID).
			Uint(log.FieldMessageID, msg.ID).
			Msg("failed to publish message to broker")
	}

	recipients, err := s.participants.ListByRoom(ctx, roomID)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("failed to list recipients for notification fan-out")
		return msg, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range recipients {
		if p.UserID == actorID {
			continue
		}
		recipientID := p.UserID
		g.Go(func() error {
			name := room.Name
			if room.Type == domain.RoomTypeOneToOne {
				resolved, err := s.resolver.OneToOneName(gctx, room.ID, recipientID)
				if err != nil {
					l.Warn().Err(err).
						Uint(log.FieldRoomID, room.ID).
						Str(log.FieldRecipientID, recipientID).
						Msg("failed to resolve room name for notification")
					resolved = naming.FallbackOneToOneName
				}
				name = resolved
			}
			if err := s.dispatcher.CreateOrUpdateChatNotification(gctx, recipientID, name, room.ID); err != nil {
				l.Error().Err(err).
					Uint(log.FieldRoomID, room.ID).
					Str(log.FieldRecipientID, recipientID).
					Msg("failed to deliver chat notification")
			}
			return nil
		})
	}
	_ = g.Wait()

	audit.LogWithDetail(ctx, audit.ActionSendMessage, actorID, broker.RoomKey(room.ID), "message sent")
	return msg, nil
}

// requireParticipant enforces the read/write rule: only current
// participants may act on a room.
func (s *chatServiceImpl) requireParticipant(ctx context.Context, roomID uint, userID string) error {
	exists, err := s.participants.Exists(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotParticipant
	}
	return nil
}

// getRoom reads the room record through the cache.
func (s *chatServiceImpl) getRoom(ctx context.Context, roomID uint) (*domain.Room, error) {
	l := log.Ctx(ctx)

	if s.roomCache != nil {
		key := s.roomCache.BuildKeyByID(roomID)
		cached, err := s.roomCache.Get(ctx, key)
		if err == nil {
			return &cached.Room, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Uint(log.FieldRoomID, roomID).Msg("room cache read failed")
		}
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	if s.roomCache != nil {
		result := &cache.RoomCacheResult{Room: *room}
		go func() {
			gl := log.L()
			cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.roomCache.Set(cctx, s.roomCache.BuildKeyByID(room.ID), result, s.roomTTL); err != nil {
				gl.Warn().Err(err).Uint(log.FieldRoomID, room.ID).Msg("room cache write failed")
			}
		}()
	}
	return room, nil
}

func (s *chatServiceImpl) invalidateRoom(ctx context.Context, roomID uint) {
	if s.roomCache == nil {
		return
	}
	l := log.Ctx(ctx)
	if err := s.roomCache.Delete(ctx, s.roomCache.BuildKeyByID(roomID)); err != nil {
		l.Warn().Err(err).Uint(log.FieldRoomID, roomID).Msg("room cache invalidation failed")
	}
}
