package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
)

type EnrollmentRepository interface {
	// Create reports a duplicate (student, course) pair as common.ErrConflict.
	Create(ctx context.Context, tx *sql.Tx, enrollment *model.Enrollment) error
	Find(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	// ListByStudent returns the student's enrollments with their courses, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]model.StudentEnrollment, error)
	// ListStudentsByCourse returns enrolled students in enrollment order.
	ListStudentsByCourse(ctx context.Context, courseID string) ([]model.EnrolledStudent, error)
}

type pgEnrollmentRepository struct {
	db *sql.DB
}

func NewPgEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &pgEnrollmentRepository{db: db}
}

func (r *pgEnrollmentRepository) Create(ctx context.Context, tx *sql.Tx, enrollment *model.Enrollment) error {
	query := `INSERT INTO enrollments (id, student_id, course_id, enrolled_at)
	          VALUES ($1, $2, $3, $4)`
	_, err := conn(r.db, tx).ExecContext(ctx, query,
		enrollment.ID, enrollment.StudentID, enrollment.CourseID, enrollment.EnrolledAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("enrollment exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgEnrollmentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEnrollmentRepository) Find(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	if !validID(studentID) || !validID(courseID) {
		return nil, fmt.Errorf("enrollment: %w", common.ErrNotFound)
	}
	query := `SELECT id, student_id, course_id, enrolled_at
	          FROM enrollments WHERE student_id = $1 AND course_id = $2`
	e := &model.Enrollment{}
	err := r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrolledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("enrollment: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgEnrollmentRepository.Find: %w", err)
	}
	return e, nil
}

func (r *pgEnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	if !validID(studentID) || !validID(courseID) {
		return false, nil
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgEnrollmentRepository.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgEnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]model.StudentEnrollment, error) {
	query := `SELECT e.id, e.enrolled_at,
	                 c.id, c.slug, c.title, c.description, c.thumbnail, c.instructor_id,
	                 c.created_at, c.updated_at, u.name
	          FROM enrollments e
	          JOIN courses c ON c.id = e.course_id
	          JOIN users u ON u.id = c.instructor_id
	          WHERE e.student_id = $1
	          ORDER BY e.enrolled_at DESC, e.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListByStudent: %w", err)
	}
	defer rows.Close()

	out := []model.StudentEnrollment{}
	for rows.Next() {
		var se model.StudentEnrollment
		var thumb sql.NullString
		c := &se.Course
		if err := rows.Scan(&se.EnrollmentID, &se.EnrolledAt,
			&c.ID, &c.Slug, &c.Title, &c.Description, &thumb, &c.InstructorID,
			&c.CreatedAt, &c.UpdatedAt, &c.InstructorName); err != nil {
			return nil, fmt.Errorf("pgEnrollmentRepository.ListByStudent: %w", err)
		}
		c.Thumbnail = stringPtr(thumb)
		out = append(out, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListByStudent: %w", err)
	}
	return out, nil
}

func (r *pgEnrollmentRepository) ListStudentsByCourse(ctx context.Context, courseID string) ([]model.EnrolledStudent, error) {
	query := `SELECT u.id, u.name, u.email, e.enrolled_at
	          FROM enrollments e
	          JOIN users u ON u.id = e.student_id
	          WHERE e.course_id = $1
	          ORDER BY e.enrolled_at ASC, e.id`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListStudentsByCourse: %w", err)
	}
	defer rows.Close()

	out := []model.EnrolledStudent{}
	for rows.Next() {
		var es model.EnrolledStudent
		if err := rows.Scan(&es.Student.ID, &es.Student.Name, &es.Student.Email, &es.EnrolledAt); err != nil {
			return nil, fmt.Errorf("pgEnrollmentRepository.ListStudentsByCourse: %w", err)
		}
		out = append(out, es)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListStudentsByCourse: %w", err)
	}
	return out, nil
}
