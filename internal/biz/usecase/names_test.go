package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type mockUserRepo struct {
	names map[string]string
	err   error
	calls int
}

func (m *mockUserRepo) GetUserName(ctx context.Context, userID string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.names[userID], nil
}

func TestNameResolver_CachesLookups(t *testing.T) {
	users := &mockUserRepo{names: map[string]string{"U1": "Alice"}}
	r := NewNameResolver(users, zerolog.Nop())

	if got := r.Resolve(context.Background(), "U1"); got != "Alice" {
		t.Errorf("Expected Alice, got %q", got)
	}
	r.Resolve(context.Background(), "U1")
	if users.calls != 1 {
		t.Errorf("Expected 1 lookup, got %d", users.calls)
	}
}

func TestNameResolver_FallsBackToID(t *testing.T) {
	users := &mockUserRepo{err: errors.New("user_not_found")}
	r := NewNameResolver(users, zerolog.Nop())

	if got := r.Resolve(context.Background(), "U404"); got != "U404" {
		t.Errorf("Expected raw ID fallback, got %q", got)
	}

	// Failures are not cached: a later successful lookup wins.
	users.err = nil
	users.names = map[string]string{"U404": "Bob"}
	if got := r.Resolve(context.Background(), "U404"); got != "Bob" {
		t.Errorf("Expected Bob after recovery, got %q", got)
	}
}
