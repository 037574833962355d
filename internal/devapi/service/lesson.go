package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
	"github.com/aussiebroadwan/lessondesk/pkg/idx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
)

// ValidationError carries per-field messages, rendered by the HTTP layer
// as {"field": ["message", ...]}.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := slices.Sorted(maps.Keys(e.Fields))
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

const (
	msgRequired = "This field is required."
	dateLayout  = "2006-01-02"
)

// Caller is who is asking, taken from the access token.
type Caller struct {
	Username string
	Role     session.Role
}

type StudentInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Guardian    string `json:"guardian"`
}

type CourseInput struct {
	Name     string          `json:"name"`
	Activity domain.Activity `json:"activity"`
	Level    string          `json:"level"`
	Capacity int             `json:"capacity"`
	Teacher  string          `json:"teacher"`
}

type LessonService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *LessonService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ListStudents returns every student for staff and only their own children
// for parents.
func (s *LessonService) ListStudents(ctx context.Context, c Caller) ([]domain.Student, error) {
	if c.Role == session.RoleParent {
		return s.Store.Students().ListStudentsByGuardian(ctx, c.Username)
	}
	return s.Store.Students().ListStudents(ctx)
}

// CreateStudent enrols a student. Parents always enrol for themselves.
func (s *LessonService) CreateStudent(ctx context.Context, c Caller, in StudentInput) (domain.Student, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Guardian = strings.TrimSpace(in.Guardian)
	if c.Role == session.RoleParent {
		in.Guardian = c.Username
	}

	var verr ValidationError
	if in.FirstName == "" {
		verr.add("first_name", msgRequired)
	}
	if in.LastName == "" {
		verr.add("last_name", msgRequired)
	}
	if in.DateOfBirth == "" {
		verr.add("date_of_birth", msgRequired)
	} else if dob, err := time.Parse(dateLayout, in.DateOfBirth); err != nil {
		verr.add("date_of_birth", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	} else if dob.After(s.now()) {
		verr.add("date_of_birth", "Date of birth cannot be in the future.")
	}
	if in.Guardian == "" {
		verr.add("guardian", msgRequired)
	} else if _, err := s.Store.Users().GetUserByUsername(ctx, in.Guardian); errors.Is(err, store.ErrNotFound) {
		verr.add("guardian", fmt.Sprintf("Invalid username %q - object does not exist.", in.Guardian))
	} else if err != nil {
		return domain.Student{}, err
	}
	if err := verr.orNil(); err != nil {
		return domain.Student{}, err
	}

	st := domain.Student{
		ID:          idx.New().String(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		Guardian:    in.Guardian,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.Store.Students().CreateStudent(ctx, st); err != nil {
		return domain.Student{}, err
	}
	return st, nil
}

func (s *LessonService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.Store.Courses().ListCourses(ctx)
}

func (s *LessonService) CreateCourse(ctx context.Context, in CourseInput) (domain.Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Teacher = strings.TrimSpace(in.Teacher)

	var verr ValidationError
	if in.Name == "" {
		verr.add("name", msgRequired)
	}
	switch {
	case in.Activity == "":
		verr.add("activity", msgRequired)
	case !in.Activity.Valid():
		verr.add("activity", fmt.Sprintf("%q is not a valid choice.", in.Activity))
	}
	if in.Capacity < 1 {
		verr.add("capacity", "Ensure this value is greater than or equal to 1.")
	}
	if in.Teacher != "" {
		teacher, err := s.Store.Users().GetUserByUsername(ctx, in.Teacher)
		switch {
		case errors.Is(err, store.ErrNotFound):
			verr.add("teacher", fmt.Sprintf("Invalid username %q - object does not exist.", in.Teacher))
		case err != nil:
			return domain.Course{}, err
		case teacher.Role != session.RoleTeacher:
			verr.add("teacher", "User is not a teacher.")
		}
	}
	if err := verr.orNil(); err != nil {
		return domain.Course{}, err
	}

	c := domain.Course{
		ID:        idx.New().String(),
		Name:      in.Name,
		Activity:  in.Activity,
		Level:     strings.TrimSpace(in.Level),
		Capacity:  in.Capacity,
		Teacher:   in.Teacher,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Store.Courses().CreateCourse(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			verr.add("name", "course with this name already exists.")
			return domain.Course{}, &verr
		}
		return domain.Course{}, err
	}
	return c, nil
}
