package memory

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
)

type usersRepo struct{ s *Store }

func (r usersRepo) GetUserByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

// GetUserByUsername matches case-insensitively, like the login form does.
func (r usersRepo) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r usersRepo) CreateUser(_ context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Username, u.Username) {
			return store.ErrAlreadyExists
		}
	}
	r.s.users[u.ID] = u
	return nil
}
