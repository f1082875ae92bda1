package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"slack-wa-relay/internal/biz/repo"
)

// NameResolver resolves user IDs to display names with a lazy cache. The
// cache is never evicted; it is bounded by the number of distinct senders
// encountered in a process lifetime.
type NameResolver struct {
	users repo.UserRepo
	cache map[string]string
	log   zerolog.Logger
}

// NewNameResolver creates a resolver backed by the given user repository.
func NewNameResolver(users repo.UserRepo, log zerolog.Logger) *NameResolver {
	return &NameResolver{
		users: users,
		cache: make(map[string]string),
		log:   log.With().Str("component", "names").Logger(),
	}
}

// Resolve returns the display name for a user ID. Lookup failures degrade to
// the raw identifier and are never surfaced to the caller.
func (r *NameResolver) Resolve(ctx context.Context, userID string) string {
	if name, ok := r.cache[userID]; ok {
		return name
	}
	name, err := r.users.GetUserName(ctx, userID)
	if err != nil || name == "" {
		r.log.Debug().Err(err).Str("user", userID).Msg("name lookup failed, using raw ID")
		return userID
	}
	r.cache[userID] = name
	return name
}
