package directory

import (
	"context"
	"errors"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/domain"
)

var ErrProfileNotFound = errors.New("profile not found")

// Directory resolves user identifiers to profile attributes. The user
// service owns the records; the chat core only reads them.
type Directory interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}
