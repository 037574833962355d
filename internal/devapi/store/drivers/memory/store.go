// Package memory is an in-process store driver. Data lives for the life of
// the process, which is all the dev API needs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         map[string]domain.User         // by id
	refreshTokens map[string]domain.RefreshToken // by token hash
	students      []domain.Student
	courses       []domain.Course
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		users:         make(map[string]domain.User),
		refreshTokens: make(map[string]domain.RefreshToken),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Users() store.Users                 { return usersRepo{s} }
func (s *Store) RefreshTokens() store.RefreshTokens { return refreshTokensRepo{s} }
func (s *Store) Students() store.Students           { return studentsRepo{s} }
func (s *Store) Courses() store.Courses             { return coursesRepo{s} }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }
