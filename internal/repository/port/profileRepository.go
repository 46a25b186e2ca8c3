package repository

import (
	"context"
	"errors"

	chat "evento-chat/internal/pkg/chat/application/domain"
)

// ErrProfileNotFound is returned when no user_profiles row matches.
var ErrProfileNotFound = errors.New("profile: not found")

// ProfileRepository reads the public user_profiles rows.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*chat.Profile, error)
	// FindByIDs returns the profiles that exist, keyed by id. Missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]chat.Profile, error)
	Upsert(ctx context.Context, p chat.Profile) error
}
