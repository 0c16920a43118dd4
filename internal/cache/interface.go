package cache

import (
	"context"
	"time"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
)

// RoomCacheResult wraps the cached room record. Only the stored record is
// cached; viewer-relative names are never written here.
type RoomCacheResult struct {
	Room domain.Room `json:"room"`
}

// RoomCache caches room records by ID.
type RoomCache interface {
	Get(ctx context.Context, key string) (*RoomCacheResult, error)
	Set(ctx context.Context, key string, result *RoomCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByID(roomID uint) string
	Close() error
}
