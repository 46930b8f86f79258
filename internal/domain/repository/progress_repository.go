package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/google/uuid"
)

type ProgressRepository interface {
	// Toggle flips the completion flag for (student, lesson), creating the row
	// as completed on first use. It runs as a single statement.
	Toggle(ctx context.Context, studentID, lessonID string, now time.Time) (*model.Progress, error)
	Find(ctx context.Context, studentID, lessonID string) (*model.Progress, error)
	// ListByStudentCourse returns the student's progress rows for lessons of the course.
	ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]model.Progress, error)
	CountCompleted(ctx context.Context, studentID, courseID string) (int, error)
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

const progressColumns = `id, student_id, lesson_id, is_completed, completed_at, created_at, updated_at`

func (r *pgProgressRepository) Toggle(ctx context.Context, studentID, lessonID string, now time.Time) (*model.Progress, error) {
	// Concurrent toggles serialize on the row lock; the last one wins.
	query := `INSERT INTO progress (id, student_id, lesson_id, is_completed, completed_at)
	          VALUES ($1, $2, $3, TRUE, $4)
	          ON CONFLICT (student_id, lesson_id) DO UPDATE
	          SET is_completed = NOT progress.is_completed,
	              completed_at = CASE WHEN progress.is_completed THEN NULL ELSE EXCLUDED.completed_at END,
	              updated_at   = NOW()
	          RETURNING ` + progressColumns
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, uuid.NewString(), studentID, lessonID, now))
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.Toggle: %w", err)
	}
	return p, nil
}

func (r *pgProgressRepository) Find(ctx context.Context, studentID, lessonID string) (*model.Progress, error) {
	if !validID(studentID) || !validID(lessonID) {
		return nil, fmt.Errorf("progress: %w", common.ErrNotFound)
	}
	query := `SELECT ` + progressColumns + ` FROM progress WHERE student_id = $1 AND lesson_id = $2`
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, studentID, lessonID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgProgressRepository.Find: %w", err)
	}
	return p, nil
}

func (r *pgProgressRepository) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]model.Progress, error) {
	query := `SELECT p.id, p.student_id, p.lesson_id, p.is_completed, p.completed_at, p.created_at, p.updated_at
	          FROM progress p
	          JOIN lessons l ON l.id = p.lesson_id
	          WHERE p.student_id = $1 AND l.course_id = $2`
	rows, err := r.db.QueryContext(ctx, query, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByStudentCourse: %w", err)
	}
	defer rows.Close()

	out := []model.Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListByStudentCourse: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByStudentCourse: %w", err)
	}
	return out, nil
}

func (r *pgProgressRepository) CountCompleted(ctx context.Context, studentID, courseID string) (int, error) {
	query := `SELECT COUNT(*)
	          FROM progress p
	          JOIN lessons l ON l.id = p.lesson_id
	          WHERE p.student_id = $1 AND l.course_id = $2 AND p.is_completed`
	var n int
	if err := r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgProgressRepository.CountCompleted: %w", err)
	}
	return n, nil
}

func scanProgress(row rowScanner) (*model.Progress, error) {
	p := &model.Progress{}
	var completedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.StudentID, &p.LessonID, &p.IsCompleted, &completedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	return p, nil
}
