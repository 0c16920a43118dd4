package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     ":memory:",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, &NotificationModel{}))
	return db
}

func TestChatNotificationCollapses(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	d := NewGormDispatcher(db)

	require.NoError(t, d.CreateOrUpdateChatNotification(ctx, "u-bob", "Alice's chat", 7))
	require.NoError(t, d.CreateOrUpdateChatNotification(ctx, "u-bob", "Alice's chat", 7))
	require.NoError(t, d.CreateOrUpdateChatNotification(ctx, "u-bob", "Alice's chat", 7))

	feed, err := d.ListByUser(ctx, "u-bob")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, CategoryChat, feed[0].Category)
	assert.Equal(t, uint(7), feed[0].ReferenceID)
	assert.Equal(t, 3, feed[0].UnreadCount)
	assert.Equal(t, "New message in Alice's chat", feed[0].Text)
}

func TestChatNotificationPerRoom(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	d := NewGormDispatcher(db)

	require.NoError(t, d.CreateOrUpdateChatNotification(ctx, "u-bob", "Alice's chat", 7))
	require.NoError(t, d.CreateOrUpdateChatNotification(ctx, "u-bob", "team", 8))

	feed, err := d.ListByUser(ctx, "u-bob")
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestInviteNotificationsNeverCollapse(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	d := NewGormDispatcher(db)

	require.NoError(t, d.CreateAndSendNotification(ctx, "u-bob", "You were invited to team", CategoryChatInvite, 8))
	require.NoError(t, d.CreateAndSendNotification(ctx, "u-bob", "You were invited to team", CategoryChatInvite, 8))

	feed, err := d.ListByUser(ctx, "u-bob")
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestListByUserFiltersOwner(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	d := NewGormDispatcher(db)

	require.NoError(t, d.CreateOrUpdateChatNotification(ctx, "u-bob", "Alice's chat", 7))
	require.NoError(t, d.CreateOrUpdateChatNotification(ctx, "u-carol", "Alice's chat", 7))

	feed, err := d.ListByUser(ctx, "u-bob")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "u-bob", feed[0].UserID)
}
