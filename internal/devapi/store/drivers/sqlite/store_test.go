package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store/drivers/sqlite"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
)

var created = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "devapi.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openStore(t)

	u := domain.User{ID: "u1", Username: "Coach.Marina", PasswordHash: "hash", Role: session.RoleTeacher, CreatedAt: created}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	got, err := st.Users().GetUserByUsername(ctx, "coach.marina")
	require.NoError(t, err)
	require.Equal(t, u, got)

	got, err = st.Users().GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, u, got)

	dup := domain.User{ID: "u2", Username: "COACH.MARINA", PasswordHash: "x", Role: session.RoleTeacher}
	require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = st.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := created.Add(24 * time.Hour)
	st := openStore(t, sqlite.WithClock(func() time.Time { return now }))
	require.NoError(t, st.Users().CreateUser(ctx, domain.User{
		ID: "u1", Username: "parent.jo", PasswordHash: "hash", Role: session.RoleParent, CreatedAt: created,
	}))

	repo := st.RefreshTokens()
	live := domain.RefreshToken{ID: "a", UserID: "u1", TokenHash: "h-live", ExpiresAt: now.Add(time.Hour), CreatedAt: created}
	stale := domain.RefreshToken{ID: "b", UserID: "u1", TokenHash: "h-stale", ExpiresAt: now.Add(-time.Hour), CreatedAt: created}
	require.NoError(t, repo.CreateRefreshToken(ctx, live))
	require.NoError(t, repo.CreateRefreshToken(ctx, stale))
	require.ErrorIs(t, repo.CreateRefreshToken(ctx, live), store.ErrAlreadyExists)

	require.NoError(t, repo.RevokeRefreshToken(ctx, "h-live"))
	got, err := repo.GetRefreshTokenByHash(ctx, "h-live")
	require.NoError(t, err)
	require.True(t, got.Revoked)
	require.True(t, live.ExpiresAt.Equal(got.ExpiresAt))

	n, err := repo.DeleteExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = repo.GetRefreshTokenByHash(ctx, "h-stale")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, repo.RevokeRefreshToken(ctx, "h-stale"), store.ErrNotFound)
}

func TestStudentsAndCourses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openStore(t)

	students, err := st.Students().ListStudents(ctx)
	require.NoError(t, err)
	require.NotNil(t, students)
	require.Empty(t, students)

	mia := domain.Student{ID: "s1", FirstName: "Mia", LastName: "Nguyen", DateOfBirth: "2018-03-04", Guardian: "parent.jo", CreatedAt: created}
	require.NoError(t, st.Students().CreateStudent(ctx, mia))
	require.NoError(t, st.Students().CreateStudent(ctx, domain.Student{
		ID: "s2", FirstName: "Leo", LastName: "Park", DateOfBirth: "2017-06-01", Guardian: "parent.sam", CreatedAt: created.Add(time.Minute),
	}))

	mine, err := st.Students().ListStudentsByGuardian(ctx, "Parent.Jo")
	require.NoError(t, err)
	require.Equal(t, []domain.Student{mia}, mine)

	all, err := st.Students().ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "s1", all[0].ID)

	require.NoError(t, st.Courses().CreateCourse(ctx, domain.Course{
		ID: "c1", Name: "Tadpoles", Activity: domain.ActivitySwimming, Capacity: 6, Teacher: "coach.marina", CreatedAt: created,
	}))
	err = st.Courses().CreateCourse(ctx, domain.Course{ID: "c2", Name: "tadpoles", Activity: domain.ActivitySwimming, Capacity: 2})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	courses, err := st.Courses().ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, domain.ActivitySwimming, courses[0].Activity)
	require.Equal(t, 6, courses[0].Capacity)
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "devapi.db")

	st, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Courses().CreateCourse(ctx, domain.Course{ID: "c1", Name: "Piano I", Activity: domain.ActivityMusic, Capacity: 1}))
	require.NoError(t, st.Close())

	st, err = sqlite.Open(path)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Ping(ctx))
	courses, err := st.Courses().ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "Piano I", courses[0].Name)
}
