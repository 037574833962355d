package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/domain"
)

type studentsRepo struct{ db *sql.DB }

const selectStudent = `SELECT id, first_name, last_name, date_of_birth, guardian, created_at FROM students`

func (r studentsRepo) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return r.query(ctx, selectStudent+` ORDER BY created_at, id`)
}

func (r studentsRepo) ListStudentsByGuardian(ctx context.Context, guardian string) ([]domain.Student, error) {
	return r.query(ctx, selectStudent+` WHERE guardian = ? ORDER BY created_at, id`, guardian)
}

func (r studentsRepo) CreateStudent(ctx context.Context, s domain.Student) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO students (id, first_name, last_name, date_of_birth, guardian, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.FirstName, s.LastName, s.DateOfBirth, s.Guardian, toUnix(s.CreatedAt),
	)
	return mapConstraint(err)
}

func (r studentsRepo) query(ctx context.Context, q string, args ...any) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Student{}
	for rows.Next() {
		var (
			s         domain.Student
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.Guardian, &createdAt); err != nil {
			return nil, err
		}
		s.CreatedAt = fromUnix(createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

type coursesRepo struct{ db *sql.DB }

func (r coursesRepo) ListCourses(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, activity, level, capacity, teacher, created_at
		 FROM courses ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Course{}
	for rows.Next() {
		var (
			c         domain.Course
			activity  string
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &activity, &c.Level, &c.Capacity, &c.Teacher, &createdAt); err != nil {
			return nil, err
		}
		c.Activity = domain.Activity(activity)
		c.CreatedAt = fromUnix(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r coursesRepo) CreateCourse(ctx context.Context, c domain.Course) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (id, name, activity, level, capacity, teacher, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Activity), c.Level, c.Capacity, c.Teacher, toUnix(c.CreatedAt),
	)
	return mapConstraint(err)
}
