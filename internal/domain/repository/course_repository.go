package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
)

type CourseRepository interface {
	Create(ctx context.Context, tx *sql.Tx, course *model.Course) error
	Update(ctx context.Context, tx *sql.Tx, course *model.Course) error
	// Delete removes the course; lessons, enrollments and progress go with it.
	Delete(ctx context.Context, tx *sql.Tx, id string) error
	// FindByID locks the row against concurrent deletion when tx is set.
	FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.Course, error)
	FindBySlug(ctx context.Context, slug string) (*model.Course, error)
	GetSummary(ctx context.Context, id string) (*model.CourseSummary, error)
	ListSummaries(ctx context.Context) ([]model.CourseSummary, error)
	ListSummariesByInstructor(ctx context.Context, instructorID string) ([]model.CourseSummary, error)
}

type pgCourseRepository struct {
	db *sql.DB
}

func NewPgCourseRepository(db *sql.DB) CourseRepository {
	return &pgCourseRepository{db: db}
}

const courseSelect = `SELECT c.id, c.slug, c.title, c.description, c.thumbnail, c.instructor_id,
	       c.created_at, c.updated_at, u.name
	FROM courses c
	JOIN users u ON u.id = c.instructor_id`

const courseSummarySelect = `SELECT c.id, c.slug, c.title, c.description, c.thumbnail, c.created_at,
	       u.id, u.name,
	       (SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id),
	       (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id)
	FROM courses c
	JOIN users u ON u.id = c.instructor_id`

func (r *pgCourseRepository) Create(ctx context.Context, tx *sql.Tx, course *model.Course) error {
	query := `INSERT INTO courses (id, slug, title, description, thumbnail, instructor_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		course.ID, course.Slug, course.Title, course.Description, nullString(course.Thumbnail), course.InstructorID,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("course slug %q already taken: %w", course.Slug, common.ErrConflict)
		}
		return fmt.Errorf("pgCourseRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCourseRepository) Update(ctx context.Context, tx *sql.Tx, course *model.Course) error {
	query := `UPDATE courses
	          SET title = $2, description = $3, thumbnail = $4, updated_at = NOW()
	          WHERE id = $1
	          RETURNING updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		course.ID, course.Title, course.Description, nullString(course.Thumbnail),
	).Scan(&course.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("course: %w", common.ErrNotFound)
		}
		return fmt.Errorf("pgCourseRepository.Update: %w", err)
	}
	return nil
}

func (r *pgCourseRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	if !validID(id) {
		return fmt.Errorf("course: %w", common.ErrNotFound)
	}
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCourseRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgCourseRepository.Delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("course: %w", common.ErrNotFound)
	}
	return nil
}

func (r *pgCourseRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.Course, error) {
	if !validID(id) {
		return nil, fmt.Errorf("course: %w", common.ErrNotFound)
	}
	query := courseSelect + ` WHERE c.id = $1`
	if tx != nil {
		query += ` FOR SHARE OF c`
	}
	return r.scanCourse(conn(r.db, tx).QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgCourseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	return r.scanCourse(r.db.QueryRowContext(ctx, courseSelect+` WHERE c.slug = $1`, slug), "FindBySlug")
}

func (r *pgCourseRepository) scanCourse(row *sql.Row, op string) (*model.Course, error) {
	c := &model.Course{}
	var thumb sql.NullString
	err := row.Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &thumb, &c.InstructorID,
		&c.CreatedAt, &c.UpdatedAt, &c.InstructorName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgCourseRepository.%s: %w", op, err)
	}
	c.Thumbnail = stringPtr(thumb)
	return c, nil
}

func (r *pgCourseRepository) GetSummary(ctx context.Context, id string) (*model.CourseSummary, error) {
	if !validID(id) {
		return nil, fmt.Errorf("course: %w", common.ErrNotFound)
	}
	rows, err := r.db.QueryContext(ctx, courseSummarySelect+` WHERE c.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.GetSummary: %w", err)
	}
	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.GetSummary: %w", err)
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("course: %w", common.ErrNotFound)
	}
	return &summaries[0], nil
}

func (r *pgCourseRepository) ListSummaries(ctx context.Context) ([]model.CourseSummary, error) {
	rows, err := r.db.QueryContext(ctx, courseSummarySelect+` ORDER BY c.created_at DESC, c.id`)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListSummaries: %w", err)
	}
	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListSummaries: %w", err)
	}
	return summaries, nil
}

func (r *pgCourseRepository) ListSummariesByInstructor(ctx context.Context, instructorID string) ([]model.CourseSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		courseSummarySelect+` WHERE c.instructor_id = $1 ORDER BY c.created_at DESC, c.id`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListSummariesByInstructor: %w", err)
	}
	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListSummariesByInstructor: %w", err)
	}
	return summaries, nil
}

func scanSummaries(rows *sql.Rows) ([]model.CourseSummary, error) {
	defer rows.Close()
	summaries := []model.CourseSummary{}
	for rows.Next() {
		var s model.CourseSummary
		var thumb sql.NullString
		if err := rows.Scan(&s.ID, &s.Slug, &s.Title, &s.Description, &thumb, &s.CreatedAt,
			&s.Instructor.ID, &s.Instructor.Name, &s.LessonCount, &s.EnrollmentCount); err != nil {
			return nil, err
		}
		s.Thumbnail = stringPtr(thumb)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
