package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store/drivers/memory"
	"github.com/aussiebroadwan/lessondesk/pkg/idx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
)

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := memory.NewStore()

	u := domain.User{ID: idx.New().String(), Username: "Coach.Marina", Role: session.RoleTeacher}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	got, err := st.Users().GetUserByUsername(ctx, "coach.marina")
	require.NoError(t, err)
	require.Equal(t, u, got)

	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u, got)

	dup := domain.User{ID: idx.New().String(), Username: "COACH.MARINA"}
	require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = st.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	st := memory.NewStore(memory.WithClock(func() time.Time { return now }))
	repo := st.RefreshTokens()

	live := domain.RefreshToken{ID: "a", TokenHash: "h-live", ExpiresAt: now.Add(time.Hour)}
	stale := domain.RefreshToken{ID: "b", TokenHash: "h-stale", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.CreateRefreshToken(ctx, live))
	require.NoError(t, repo.CreateRefreshToken(ctx, stale))
	require.ErrorIs(t, repo.CreateRefreshToken(ctx, live), store.ErrAlreadyExists)

	require.NoError(t, repo.RevokeRefreshToken(ctx, "h-live"))
	got, err := repo.GetRefreshTokenByHash(ctx, "h-live")
	require.NoError(t, err)
	require.True(t, got.Revoked)

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
	st := memory.NewStore()

	students, err := st.Students().ListStudents(ctx)
	require.NoError(t, err)
	require.NotNil(t, students)
	require.Empty(t, students)

	require.NoError(t, st.Students().CreateStudent(ctx, domain.Student{ID: "s1", FirstName: "Mia", Guardian: "parent.jo"}))
	require.NoError(t, st.Students().CreateStudent(ctx, domain.Student{ID: "s2", FirstName: "Leo", Guardian: "parent.sam"}))

	mine, err := st.Students().ListStudentsByGuardian(ctx, "Parent.Jo")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Mia", mine[0].FirstName)

	require.NoError(t, st.Courses().CreateCourse(ctx, domain.Course{ID: "c1", Name: "Tadpoles", Activity: domain.ActivitySwimming}))
	err = st.Courses().CreateCourse(ctx, domain.Course{ID: "c2", Name: "tadpoles", Activity: domain.ActivitySwimming})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	courses, err := st.Courses().ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
}
