package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
)

type LessonRepository interface {
	Create(ctx context.Context, tx *sql.Tx, lesson *model.Lesson) error
	Update(ctx context.Context, tx *sql.Tx, lesson *model.Lesson) error
	// Delete removes the lesson and its progress rows.
	Delete(ctx context.Context, tx *sql.Tx, id string) error
	FindByID(ctx context.Context, id string) (*model.Lesson, error)
	// ListByCourse returns lessons sorted by order; ties fall back to creation time.
	ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

type pgLessonRepository struct {
	db *sql.DB
}

func NewPgLessonRepository(db *sql.DB) LessonRepository {
	return &pgLessonRepository{db: db}
}

const lessonColumns = `id, course_id, title, description, content_type, content_url, thumbnail, "order", created_at, updated_at`

func (r *pgLessonRepository) Create(ctx context.Context, tx *sql.Tx, lesson *model.Lesson) error {
	query := `INSERT INTO lessons (id, course_id, title, description, content_type, content_url, thumbnail, "order")
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		lesson.ID, lesson.CourseID, lesson.Title, nullString(lesson.Description), lesson.ContentType,
		lesson.ContentURL, nullString(lesson.Thumbnail), lesson.Order,
	).Scan(&lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgLessonRepository.Create: %w", err)
	}
	return nil
}

func (r *pgLessonRepository) Update(ctx context.Context, tx *sql.Tx, lesson *model.Lesson) error {
	query := `UPDATE lessons
	          SET title = $2, description = $3, content_type = $4, content_url = $5, thumbnail = $6,
	              "order" = $7, updated_at = NOW()
	          WHERE id = $1
	          RETURNING updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		lesson.ID, lesson.Title, nullString(lesson.Description), lesson.ContentType, lesson.ContentURL,
		nullString(lesson.Thumbnail), lesson.Order,
	).Scan(&lesson.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lesson: %w", common.ErrNotFound)
		}
		return fmt.Errorf("pgLessonRepository.Update: %w", err)
	}
	return nil
}

func (r *pgLessonRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	if !validID(id) {
		return fmt.Errorf("lesson: %w", common.ErrNotFound)
	}
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgLessonRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgLessonRepository.Delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lesson: %w", common.ErrNotFound)
	}
	return nil
}

func (r *pgLessonRepository) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	if !validID(id) {
		return nil, fmt.Errorf("lesson: %w", common.ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id)
	l, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lesson: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgLessonRepository.FindByID: %w", err)
	}
	return l, nil
}

func (r *pgLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons
	          WHERE course_id = $1
	          ORDER BY "order" ASC, created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("pgLessonRepository.ListByCourse: %w", err)
	}
	defer rows.Close()

	lessons := []model.Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("pgLessonRepository.ListByCourse: %w", err)
		}
		lessons = append(lessons, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgLessonRepository.ListByCourse: %w", err)
	}
	return lessons, nil
}

func (r *pgLessonRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lessons WHERE course_id = $1`, courseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgLessonRepository.CountByCourse: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLesson(row rowScanner) (*model.Lesson, error) {
	l := &model.Lesson{}
	var desc, thumb sql.NullString
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title, &desc, &l.ContentType, &l.ContentURL, &thumb,
		&l.Order, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Description = stringPtr(desc)
	l.Thumbnail = stringPtr(thumb)
	return l, nil
}
