package naming

import (
	"context"
	"errors"
	"fmt"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/directory"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/internal/repository"
	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/log"
)

// FallbackOneToOneName is returned for a degenerate one-to-one room where
// no opponent can be resolved.
const FallbackOneToOneName = "1:1 chat"

// Resolver computes viewer-relative display names for one-to-one rooms.
// Every call site goes through here so listing and notification fan-out can
// never disagree; the result is never cached because the viewer differs per
// call.
type Resolver struct {
	participants repository.ParticipantRepository
	directory    directory.Directory
}

// NewResolver creates a new naming resolver.
func NewResolver(participants repository.ParticipantRepository, dir directory.Directory) *Resolver {
	return &Resolver{participants: participants, directory: dir}
}

// OneToOneName returns the room's display name from the viewer's side: the
// opponent's nickname. Degenerate rooms fall back to a fixed label.
func (r *Resolver) OneToOneName(ctx context.Context, roomID uint, viewerID string) (string, error) {
	participants, err := r.participants.ListByRoom(ctx, roomID)
	if err != nil {
		return "", err
	}

	var opponentID string
	for _, p := range participants {
		if p.UserID != viewerID {
			opponentID = p.UserID
			break
		}
	}
	if opponentID == "" {
		return FallbackOneToOneName, nil
	}

	profile, err := r.directory.GetProfile(ctx, opponentID)
	if err != nil {
		if errors.Is(err, directory.ErrProfileNotFound) {
			// Opponent account is gone; degrade to the fixed label.
			l := log.Ctx(ctx)
			l.Warn().Uint(log.FieldRoomID, roomID).Str(log.FieldUserID, opponentID).Msg("opponent profile missing, using fallback room name")
			return FallbackOneToOneName, nil
		}
		return "", err
	}

	return DisplayName(profile.Nickname), nil
}

// DisplayName formats a one-to-one room name from the opponent's nickname.
func DisplayName(nickname string) string {
	return fmt.Sprintf("%s's chat", nickname)
}
