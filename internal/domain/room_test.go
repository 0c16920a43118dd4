package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKey(t *testing.T) {
	assert.Equal(t, "alice:bob", PairKey("alice", "bob"))
	assert.Equal(t, "alice:bob", PairKey("bob", "alice"))
	assert.Equal(t, PairKey("u-1", "u-2"), PairKey("u-2", "u-1"))
}

func TestRoomTypeValid(t *testing.T) {
	assert.True(t, RoomTypeOneToOne.Valid())
	assert.True(t, RoomTypeGroup.Valid())
	assert.False(t, RoomType("broadcast").Valid())
	assert.False(t, RoomType("").Valid())
}

func TestRoomToResponse(t *testing.T) {
	room := Room{
		ID:          7,
		Type:        RoomTypeOneToOne,
		Name:        "stored name",
		MemberCount: 2,
	}

	resp := room.ToResponse("bob's chat")

	assert.Equal(t, uint(7), resp.ID)
	assert.Equal(t, RoomTypeOneToOne, resp.Type)
	assert.Equal(t, "bob's chat", resp.Name)
	assert.Equal(t, 2, resp.MemberCount)
}
