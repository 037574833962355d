package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
	"github.com/aussiebroadwan/lessondesk/pkg/cryptox"
	"github.com/aussiebroadwan/lessondesk/pkg/idx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
)

var ErrInvalidRole = errors.New("invalid_role")

type UserService struct {
	Store store.Store
}

// Seed creates an account. An existing username is left untouched so that
// restarts with the same config are harmless.
func (s *UserService) Seed(ctx context.Context, username, password string, role session.Role) (domain.User, error) {
	switch role {
	case session.RoleAdmin, session.RoleTeacher, session.RoleParent:
	default:
		return domain.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	username = strings.TrimSpace(username)
	if existing, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}
