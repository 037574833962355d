package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface of the dev API, split into
// sub-repositories per entity.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Students() Students
	Courses() Courses

	Close() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser fails with ErrAlreadyExists on a duplicate username.
	CreateUser(ctx context.Context, u domain.User) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record for a fingerprint, expired or not.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens removes records past their expiry and
	// returns how many went.
	DeleteExpiredRefreshTokens(ctx context.Context) (int, error)
}

type Students interface {
	ListStudents(ctx context.Context) ([]domain.Student, error)

	// ListStudentsByGuardian is what a parent sees.
	ListStudentsByGuardian(ctx context.Context, guardian string) ([]domain.Student, error)

	CreateStudent(ctx context.Context, s domain.Student) error
}

type Courses interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)

	// CreateCourse fails with ErrAlreadyExists on a duplicate name.
	CreateCourse(ctx context.Context, c domain.Course) error
}
