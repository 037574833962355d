package memory

import (
	"context"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
)

type refreshTokensRepo struct{ s *Store }

func (r refreshTokensRepo) CreateRefreshToken(_ context.Context, t domain.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.refreshTokens[t.TokenHash]; ok {
		return store.ErrAlreadyExists
	}
	r.s.refreshTokens[t.TokenHash] = t
	return nil
}

func (r refreshTokensRepo) GetRefreshTokenByHash(_ context.Context, hash string) (domain.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.refreshTokens[hash]
	if !ok {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	return t, nil
}

func (r refreshTokensRepo) RevokeRefreshToken(_ context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.refreshTokens[hash]
	if !ok {
		return store.ErrNotFound
	}
	t.Revoked = true
	r.s.refreshTokens[hash] = t
	return nil
}

func (r refreshTokensRepo) DeleteExpiredRefreshTokens(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	deleted := 0
	for hash, t := range r.s.refreshTokens {
		if !now.Before(t.ExpiresAt) {
			delete(r.s.refreshTokens, hash)
			deleted++
		}
	}
	return deleted, nil
}
