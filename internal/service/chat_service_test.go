package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/broker"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/cache"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/directory"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/naming"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/repository"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/database"
)

type publishedMessage struct {
	Exchange   string
	RoutingKey string
	Payload    interface{}
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	published []publishedMessage
}

func (f *fakePublisher) Publish(_ context.Context, exchange, routingKey string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{Exchange: exchange, RoutingKey: routingKey, Payload: payload})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) messages() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.published))
	copy(out, f.published)
	return out
}

type chatCall struct {
	UserID   string
	RoomName string
	RoomID   uint
}

type inviteCall struct {
	UserID      string
	Text        string
	Category    string
	ReferenceID uint
}

type fakeDispatcher struct {
	mu          sync.Mutex
	failFor     map[string]error
	chatCalls   []chatCall
	inviteCalls []inviteCall
}

func (f *fakeDispatcher) CreateOrUpdateChatNotification(_ context.Context, userID, roomName string, roomID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[userID]; err != nil {
		return err
	}
	f.chatCalls = append(f.chatCalls, chatCall{UserID: userID, RoomName: roomName, RoomID: roomID})
	return nil
}

func (f *fakeDispatcher) CreateAndSendNotification(_ context.Context, userID, text, category string, referenceID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[userID]; err != nil {
		return err
	}
	f.inviteCalls = append(f.inviteCalls, inviteCall{UserID: userID, Text: text, Category: category, ReferenceID: referenceID})
	return nil
}

func (f *fakeDispatcher) chats() []chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]chatCall, len(f.chatCalls))
	copy(out, f.chatCalls)
	return out
}

func (f *fakeDispatcher) invites() []inviteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]inviteCall, len(f.inviteCalls))
	copy(out, f.inviteCalls)
	return out
}

type fakeRoomCache struct {
	mu      sync.Mutex
	failing bool
	data    map[string]*cache.RoomCacheResult
	deletes []string
}

func newFakeRoomCache(failing bool) *fakeRoomCache {
	return &fakeRoomCache{failing: failing, data: map[string]*cache.RoomCacheResult{}}
}

func (f *fakeRoomCache) BuildKeyByID(roomID uint) string {
	return fmt.Sprintf("chat:room:id:%d", roomID)
}

func (f *fakeRoomCache) Get(_ context.Context, key string) (*cache.RoomCacheResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("cache down")
	}
	if result, ok := f.data[key]; ok {
		return result, nil
	}
	return nil, cache.ErrCacheMiss
}

func (f *fakeRoomCache) Set(_ context.Context, key string, result *cache.RoomCacheResult, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("cache down")
	}
	f.data[key] = result
	return nil
}

func (f *fakeRoomCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("cache down")
	}
	f.deletes = append(f.deletes, keys...)
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRoomCache) Close() error { return nil }

func (f *fakeRoomCache) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deletes))
	copy(out, f.deletes)
	return out
}

type fixture struct {
	db           *gorm.DB
	svc          ChatService
	publisher    *fakePublisher
	dispatcher   *fakeDispatcher
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	messages     repository.MessageRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, roomCache cache.RoomCache) *fixture {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     ":memory:",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db,
		&domain.RoomModel{},
		&domain.ParticipantModel{},
		&domain.MessageModel{},
		&directory.UserModel{},
	))

	rooms := repository.NewGormRoomRepository(db)
	participants := repository.NewGormParticipantRepository(db)
	messages := repository.NewGormMessageRepository(db)
	dir := directory.NewGormDirectory(db)
	resolver := naming.NewResolver(participants, dir)
	publisher := &fakePublisher{}
	dispatcher := &fakeDispatcher{failFor: map[string]error{}}

	svc := NewChatService(rooms, participants, messages, dir, resolver, dispatcher, publisher, roomCache, time.Minute)

	return &fixture{
		db:           db,
		svc:          svc,
		publisher:    publisher,
		dispatcher:   dispatcher,
		rooms:        rooms,
		participants: participants,
		messages:     messages,
	}
}

func (f *fixture) seedUser(t *testing.T, id, username, nickname string) {
	t.Helper()
	require.NoError(t, f.db.Create(&directory.UserModel{ID: id, Username: username, Nickname: nickname}).Error)
}

func TestCreateOrGetOneToOneRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	first, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-bob"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomTypeOneToOne, first.Type)
	assert.Equal(t, "Bob's chat", first.Name)
	assert.Equal(t, 2, first.MemberCount)

	// Same pair from the other side returns the same room under the
	// caller's own display name.
	second, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-bob", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-alice"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice's chat", second.Name)

	var count int64
	require.NoError(t, f.db.Model(&domain.RoomModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrGetOneToOneRoomConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	const callers = 8
	ids := make([]uint, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor, target := "u-alice", "u-bob"
			if i%2 == 1 {
				actor, target = target, actor
			}
			room, err := f.svc.CreateOrGetOneToOneRoom(ctx, actor, &domain.CreateOneToOneRoomRequest{TargetUserID: target})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = room.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, f.db.Model(&domain.RoomModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOneToOneRoomRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")

	_, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-alice"})
	assert.ErrorIs(t, err, ErrSelfRoom)

	_, err = f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateGroupRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")
	f.seedUser(t, "u-carol", "carol", "Carol")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{
		Name:           "team",
		InvitedUserIDs: []string{"u-bob", "u-carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomTypeGroup, room.Type)
	assert.Equal(t, "team", room.Name)
	assert.Equal(t, 3, room.MemberCount)

	members, err := f.participants.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	invites := f.dispatcher.invites()
	require.Len(t, invites, 2)
	for _, inv := range invites {
		assert.Equal(t, "You were invited to team", inv.Text)
		assert.Equal(t, "chat_invite", inv.Category)
		assert.Equal(t, room.ID, inv.ReferenceID)
	}
}

func TestSendMessagePersistsPublishesAndNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")
	f.seedUser(t, "u-carol", "carol", "Carol")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{
		Name:           "team",
		InvitedUserIDs: []string{"u-bob", "u-carol"},
	})
	require.NoError(t, err)

	msg, err := f.svc.SendMessage(ctx, "u-alice", "Alice", room.ID, &domain.SendMessageRequest{Body: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "Alice", msg.SenderNickname)

	history, err := f.messages.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Body)

	published := f.publisher.messages()
	require.Len(t, published, 1)
	assert.Equal(t, broker.ExchangeChat, published[0].Exchange)
	assert.Equal(t, broker.RoomKey(room.ID), published[0].RoutingKey)

	// Everyone but the sender, each exactly once.
	chats := f.dispatcher.chats()
	require.Len(t, chats, 2)
	notified := map[string]int{}
	for _, c := range chats {
		notified[c.UserID]++
		assert.Equal(t, "team", c.RoomName)
		assert.Equal(t, room.ID, c.RoomID)
	}
	assert.Equal(t, map[string]int{"u-bob": 1, "u-carol": 1}, notified)
}

func TestSendMessageOneToOneNotifiesWithViewerName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	room, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-bob"})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, "u-alice", "Alice", room.ID, &domain.SendMessageRequest{Body: "hi"})
	require.NoError(t, err)

	chats := f.dispatcher.chats()
	require.Len(t, chats, 1)
	assert.Equal(t, "u-bob", chats[0].UserID)
	// Bob's notification names the room from Bob's side.
	assert.Equal(t, "Alice's chat", chats[0].RoomName)
}

func TestSendMessageFanOutFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")
	f.seedUser(t, "u-carol", "carol", "Carol")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{
		Name:           "team",
		InvitedUserIDs: []string{"u-bob", "u-carol"},
	})
	require.NoError(t, err)

	f.dispatcher.failFor["u-bob"] = errors.New("notification store down")

	msg, err := f.svc.SendMessage(ctx, "u-alice", "Alice", room.ID, &domain.SendMessageRequest{Body: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)

	chats := f.dispatcher.chats()
	require.Len(t, chats, 1)
	assert.Equal(t, "u-carol", chats[0].UserID)
}

func TestSendMessageSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	room, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-bob"})
	require.NoError(t, err)

	f.publisher.err = errors.New("broker unreachable")

	msg, err := f.svc.SendMessage(ctx, "u-alice", "Alice", room.ID, &domain.SendMessageRequest{Body: "hello"})
	require.NoError(t, err)

	history, err := f.messages.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
}

func TestSendMessageAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")
	f.seedUser(t, "u-eve", "eve", "Eve")

	room, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-bob"})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, "u-eve", "Eve", room.ID, &domain.SendMessageRequest{Body: "let me in"})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.svc.SendMessage(ctx, "u-alice", "Alice", 999, &domain.SendMessageRequest{Body: "hello"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestReadsRequireMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")
	f.seedUser(t, "u-eve", "eve", "Eve")

	room, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-bob"})
	require.NoError(t, err)

	_, err = f.svc.GetRoom(ctx, "u-eve", room.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.svc.ListMessages(ctx, "u-eve", room.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.svc.ListParticipants(ctx, "u-eve", room.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.svc.GetRoom(ctx, "u-alice", 999)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestListRoomsViewerRelativeNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	_, err := f.svc.CreateOrGetOneToOneRoom(ctx, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-bob"})
	require.NoError(t, err)

	aliceRooms, err := f.svc.ListRooms(ctx, "u-alice", domain.RoomTypeOneToOne)
	require.NoError(t, err)
	require.Len(t, aliceRooms, 1)
	assert.Equal(t, "Bob's chat", aliceRooms[0].Name)

	bobRooms, err := f.svc.ListRooms(ctx, "u-bob", domain.RoomTypeOneToOne)
	require.NoError(t, err)
	require.Len(t, bobRooms, 1)
	assert.Equal(t, "Alice's chat", bobRooms[0].Name)

	_, err = f.svc.ListRooms(ctx, "u-alice", domain.RoomType("broadcast"))
	assert.ErrorIs(t, err, ErrInvalidRoomType)
}

func TestInviteSkipsExistingMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{
		Name:           "team",
		InvitedUserIDs: []string{"u-bob"},
	})
	require.NoError(t, err)
	require.Len(t, f.dispatcher.invites(), 1)

	// Re-inviting an existing member is a silent no-op.
	require.NoError(t, f.svc.InviteParticipants(ctx, "u-alice", room.ID, []string{"u-bob"}))
	assert.Len(t, f.dispatcher.invites(), 1)

	// Unknown invitees are reported; the room is untouched.
	err = f.svc.InviteParticipants(ctx, "u-alice", room.ID, []string{"u-ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	members, err := f.participants.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestInviteRequiresMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")
	f.seedUser(t, "u-eve", "eve", "Eve")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{Name: "team"})
	require.NoError(t, err)

	err = f.svc.InviteParticipants(ctx, "u-eve", room.ID, []string{"u-bob"})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestRemoveAndReInvite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{
		Name:           "team",
		InvitedUserIDs: []string{"u-bob"},
	})
	require.NoError(t, err)

	members, err := f.participants.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	var bobRow domain.Participant
	for _, m := range members {
		if m.UserID == "u-bob" {
			bobRow = m
		}
	}
	require.NotZero(t, bobRow.ID)

	// Removal is silent: no extra notification of any kind.
	require.NoError(t, f.svc.RemoveParticipant(ctx, "u-alice", room.ID, bobRow.ID))
	assert.Len(t, f.dispatcher.invites(), 1)

	// Re-inviting produces a fresh participation row and a second invite
	// notification.
	require.NoError(t, f.svc.InviteParticipants(ctx, "u-alice", room.ID, []string{"u-bob"}))
	assert.Len(t, f.dispatcher.invites(), 2)

	members, err = f.participants.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	var readded domain.Participant
	for _, m := range members {
		if m.UserID == "u-bob" {
			readded = m
		}
	}
	assert.NotEqual(t, bobRow.ID, readded.ID)

	got, err := f.rooms.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MemberCount)
}

func TestLeaveRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{
		Name:           "team",
		InvitedUserIDs: []string{"u-bob"},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.LeaveRoom(ctx, "u-bob", room.ID))

	// Leaving is silent and revokes access.
	_, err = f.svc.ListMessages(ctx, "u-bob", room.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	bobRooms, err := f.svc.ListRooms(ctx, "u-bob", domain.RoomTypeGroup)
	require.NoError(t, err)
	assert.Empty(t, bobRooms)

	assert.ErrorIs(t, f.svc.LeaveRoom(ctx, "u-bob", room.ID), ErrNotParticipant)
}

func TestCreateOneToOneRoomDetachedFromCallerCancellation(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	// A caller that is already gone must not poison the shared create;
	// only its own read of the result may fail.
	_, _ = f.svc.CreateOrGetOneToOneRoom(canceled, "u-alice", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-bob"})

	room, err := f.rooms.FindOneToOne(context.Background(), domain.PairKey("u-alice", "u-bob"))
	require.NoError(t, err)

	second, err := f.svc.CreateOrGetOneToOneRoom(context.Background(), "u-bob", &domain.CreateOneToOneRoomRequest{TargetUserID: "u-alice"})
	require.NoError(t, err)
	assert.Equal(t, room.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&domain.RoomModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetRoomReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRoomCache(false)
	f := newFixtureWithCache(t, rc)
	f.seedUser(t, "u-alice", "alice", "Alice")
	f.seedUser(t, "u-bob", "bob", "Bob")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{
		Name:           "team",
		InvitedUserIDs: []string{"u-bob"},
	})
	require.NoError(t, err)

	// Seed a divergent cached record to prove reads hit the cache first.
	key := rc.BuildKeyByID(room.ID)
	require.NoError(t, rc.Set(ctx, key, &cache.RoomCacheResult{Room: domain.Room{
		ID:          room.ID,
		Type:        domain.RoomTypeGroup,
		Name:        "cached team",
		MemberCount: 2,
	}}, time.Minute))

	got, err := f.svc.GetRoom(ctx, "u-alice", room.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached team", got.Name)

	// Membership changes drop the cached record.
	require.NoError(t, f.svc.LeaveRoom(ctx, "u-bob", room.ID))
	assert.Contains(t, rc.deletedKeys(), key)

	got, err = f.svc.GetRoom(ctx, "u-alice", room.ID)
	require.NoError(t, err)
	assert.Equal(t, "team", got.Name)
}

func TestGetRoomSurvivesCacheFailure(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRoomCache(true)
	f := newFixtureWithCache(t, rc)
	f.seedUser(t, "u-alice", "alice", "Alice")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{Name: "team"})
	require.NoError(t, err)

	// Cache reads and invalidations fail; the store still serves.
	got, err := f.svc.GetRoom(ctx, "u-alice", room.ID)
	require.NoError(t, err)
	assert.Equal(t, "team", got.Name)

	require.NoError(t, f.svc.LeaveRoom(ctx, "u-alice", room.ID))
}

func TestListMessagesEmptyRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "u-alice", "alice", "Alice")

	room, err := f.svc.CreateGroupRoom(ctx, "u-alice", &domain.CreateGroupRoomRequest{Name: "team"})
	require.NoError(t, err)

	history, err := f.svc.ListMessages(ctx, "u-alice", room.ID)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
