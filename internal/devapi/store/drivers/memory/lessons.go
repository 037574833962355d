package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
)

type studentsRepo struct{ s *Store }

func (r studentsRepo) ListStudents(_ context.Context) ([]domain.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.Student{}, r.s.students...), nil
}

func (r studentsRepo) ListStudentsByGuardian(_ context.Context, guardian string) ([]domain.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Student{}
	for _, st := range r.s.students {
		if strings.EqualFold(st.Guardian, guardian) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r studentsRepo) CreateStudent(_ context.Context, st domain.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if slices.ContainsFunc(r.s.students, func(x domain.Student) bool { return x.ID == st.ID }) {
		return store.ErrAlreadyExists
	}
	r.s.students = append(r.s.students, st)
	return nil
}

type coursesRepo struct{ s *Store }

func (r coursesRepo) ListCourses(_ context.Context) ([]domain.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.Course{}, r.s.courses...), nil
}

func (r coursesRepo) CreateCourse(_ context.Context, c domain.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if slices.ContainsFunc(r.s.courses, func(x domain.Course) bool {
		return x.ID == c.ID || strings.EqualFold(x.Name, c.Name)
	}) {
		return store.ErrAlreadyExists
	}
	r.s.courses = append(r.s.courses, c)
	return nil
}
