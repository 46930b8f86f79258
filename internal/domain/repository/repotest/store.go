// Package repotest provides in-memory repositories with the same uniqueness
// and cascade behaviour as the PostgreSQL schema.
package repotest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu          sync.Mutex
	users       map[string]model.User
	courses     map[string]model.Course
	lessons     map[string]model.Lesson
	enrollments map[string]model.Enrollment
	progress    map[string]model.Progress

	// Now stamps created_at columns. Tests may replace it.
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]model.User),
		courses:     make(map[string]model.Course),
		lessons:     make(map[string]model.Lesson),
		enrollments: make(map[string]model.Enrollment),
		progress:    make(map[string]model.Progress),
		Now:         time.Now,
	}
}

// Repositories bundles every repository backed by one store.
type Repositories struct {
	Users       repository.UserRepository
	Courses     repository.CourseRepository
	Lessons     repository.LessonRepository
	Enrollments repository.EnrollmentRepository
	Progress    repository.ProgressRepository
	Tx          repository.Transactor
}

func (s *Store) Repositories() Repositories {
	return Repositories{
		Users:       &userRepo{s},
		Courses:     &courseRepo{s},
		Lessons:     &lessonRepo{s},
		Enrollments: &enrollmentRepo{s},
		Progress:    &progressRepo{s},
		Tx:          transactor{},
	}
}

// Counts reports the number of rows per table, for orphan checks.
func (s *Store) Counts() (lessons, enrollments, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lessons), len(s.enrollments), len(s.progress)
}

type transactor struct{}

func (transactor) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func pairKey(a, b string) string { return a + "|" + b }

// Users

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.s.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", common.ErrNotFound)
}

func (r *userRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", common.ErrNotFound)
	}
	return &u, nil
}

// Courses

type courseRepo struct{ s *Store }

func (r *courseRepo) Create(_ context.Context, _ *sql.Tx, course *model.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.courses {
		if c.Slug == course.Slug {
			return fmt.Errorf("course slug %q already taken: %w", course.Slug, common.ErrConflict)
		}
	}
	course.CreatedAt = r.s.Now()
	course.UpdatedAt = course.CreatedAt
	stored := *course
	stored.InstructorName = ""
	r.s.courses[course.ID] = stored
	course.InstructorName = r.s.users[course.InstructorID].Name
	return nil
}

func (r *courseRepo) Update(_ context.Context, _ *sql.Tx, course *model.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[course.ID]
	if !ok {
		return fmt.Errorf("course: %w", common.ErrNotFound)
	}
	c.Title, c.Description, c.Thumbnail = course.Title, course.Description, course.Thumbnail
	c.UpdatedAt = r.s.Now()
	r.s.courses[c.ID] = c
	course.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *courseRepo) Delete(_ context.Context, _ *sql.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return fmt.Errorf("course: %w", common.ErrNotFound)
	}
	delete(r.s.courses, id)
	for lid, l := range r.s.lessons {
		if l.CourseID == id {
			r.s.deleteLessonLocked(lid)
		}
	}
	for k, e := range r.s.enrollments {
		if e.CourseID == id {
			delete(r.s.enrollments, k)
		}
	}
	return nil
}

func (r *courseRepo) FindByID(_ context.Context, _ *sql.Tx, id string) (*model.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, fmt.Errorf("course: %w", common.ErrNotFound)
	}
	return r.s.withInstructorLocked(c), nil
}

func (r *courseRepo) FindBySlug(_ context.Context, slug string) (*model.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.courses {
		if c.Slug == slug {
			return r.s.withInstructorLocked(c), nil
		}
	}
	return nil, fmt.Errorf("course: %w", common.ErrNotFound)
}

func (r *courseRepo) GetSummary(_ context.Context, id string) (*model.CourseSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, fmt.Errorf("course: %w", common.ErrNotFound)
	}
	summary := r.s.summaryLocked(c)
	return &summary, nil
}

func (r *courseRepo) ListSummaries(_ context.Context) ([]model.CourseSummary, error) {
	return r.list(func(model.Course) bool { return true }), nil
}

func (r *courseRepo) ListSummariesByInstructor(_ context.Context, instructorID string) ([]model.CourseSummary, error) {
	return r.list(func(c model.Course) bool { return c.InstructorID == instructorID }), nil
}

func (r *courseRepo) list(keep func(model.Course) bool) []model.CourseSummary {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.CourseSummary{}
	for _, c := range r.s.courses {
		if keep(c) {
			out = append(out, r.s.summaryLocked(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) withInstructorLocked(c model.Course) *model.Course {
	c.InstructorName = s.users[c.InstructorID].Name
	return &c
}

func (s *Store) summaryLocked(c model.Course) model.CourseSummary {
	summary := model.CourseSummary{
		ID:          c.ID,
		Slug:        c.Slug,
		Title:       c.Title,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Instructor:  model.UserSummary{ID: c.InstructorID, Name: s.users[c.InstructorID].Name},
		CreatedAt:   c.CreatedAt,
	}
	for _, l := range s.lessons {
		if l.CourseID == c.ID {
			summary.LessonCount++
		}
	}
	for _, e := range s.enrollments {
		if e.CourseID == c.ID {
			summary.EnrollmentCount++
		}
	}
	return summary
}

// Lessons

type lessonRepo struct{ s *Store }

func (r *lessonRepo) Create(_ context.Context, _ *sql.Tx, lesson *model.Lesson) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[lesson.CourseID]; !ok {
		return fmt.Errorf("lesson course missing: %w", common.ErrNotFound)
	}
	lesson.CreatedAt = r.s.Now()
	lesson.UpdatedAt = lesson.CreatedAt
	r.s.lessons[lesson.ID] = *lesson
	return nil
}

func (r *lessonRepo) Update(_ context.Context, _ *sql.Tx, lesson *model.Lesson) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.lessons[lesson.ID]
	if !ok {
		return fmt.Errorf("lesson: %w", common.ErrNotFound)
	}
	lesson.CourseID = existing.CourseID
	lesson.CreatedAt = existing.CreatedAt
	lesson.UpdatedAt = r.s.Now()
	r.s.lessons[lesson.ID] = *lesson
	return nil
}

func (r *lessonRepo) Delete(_ context.Context, _ *sql.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lessons[id]; !ok {
		return fmt.Errorf("lesson: %w", common.ErrNotFound)
	}
	r.s.deleteLessonLocked(id)
	return nil
}

func (s *Store) deleteLessonLocked(id string) {
	delete(s.lessons, id)
	for k, p := range s.progress {
		if p.LessonID == id {
			delete(s.progress, k)
		}
	}
}

func (r *lessonRepo) FindByID(_ context.Context, id string) (*model.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lessons[id]
	if !ok {
		return nil, fmt.Errorf("lesson: %w", common.ErrNotFound)
	}
	return &l, nil
}

func (r *lessonRepo) ListByCourse(_ context.Context, courseID string) ([]model.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Lesson{}
	for _, l := range r.s.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	model.SortLessons(out)
	return out, nil
}

func (r *lessonRepo) CountByCourse(_ context.Context, courseID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, l := range r.s.lessons {
		if l.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

// Enrollments

type enrollmentRepo struct{ s *Store }

func (r *enrollmentRepo) Create(_ context.Context, _ *sql.Tx, e *model.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(e.StudentID, e.CourseID)
	if _, ok := r.s.enrollments[key]; ok {
		return fmt.Errorf("enrollment exists: %w", common.ErrConflict)
	}
	if _, ok := r.s.courses[e.CourseID]; !ok {
		return fmt.Errorf("enrollment course missing: %w", common.ErrNotFound)
	}
	r.s.enrollments[key] = *e
	return nil
}

func (r *enrollmentRepo) Find(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.enrollments[pairKey(studentID, courseID)]
	if !ok {
		return nil, fmt.Errorf("enrollment: %w", common.ErrNotFound)
	}
	return &e, nil
}

func (r *enrollmentRepo) Exists(_ context.Context, studentID, courseID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.enrollments[pairKey(studentID, courseID)]
	return ok, nil
}

func (r *enrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.StudentEnrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.StudentEnrollment{}
	for _, e := range r.s.enrollments {
		if e.StudentID != studentID {
			continue
		}
		c := r.s.withInstructorLocked(r.s.courses[e.CourseID])
		out = append(out, model.StudentEnrollment{EnrollmentID: e.ID, EnrolledAt: e.EnrolledAt, Course: *c})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.After(out[j].EnrolledAt)
		}
		return out[i].EnrollmentID < out[j].EnrollmentID
	})
	return out, nil
}

func (r *enrollmentRepo) ListStudentsByCourse(_ context.Context, courseID string) ([]model.EnrolledStudent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	type row struct {
		id string
		es model.EnrolledStudent
	}
	rows := []row{}
	for _, e := range r.s.enrollments {
		if e.CourseID != courseID {
			continue
		}
		u := r.s.users[e.StudentID]
		rows = append(rows, row{e.ID, model.EnrolledStudent{
			Student:    model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email},
			EnrolledAt: e.EnrolledAt,
		}})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].es.EnrolledAt.Equal(rows[j].es.EnrolledAt) {
			return rows[i].es.EnrolledAt.Before(rows[j].es.EnrolledAt)
		}
		return rows[i].id < rows[j].id
	})
	out := make([]model.EnrolledStudent, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.es)
	}
	return out, nil
}

// Progress

type progressRepo struct{ s *Store }

func (r *progressRepo) Toggle(_ context.Context, studentID, lessonID string, now time.Time) (*model.Progress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lessons[lessonID]; !ok {
		return nil, fmt.Errorf("progress lesson missing: %w", common.ErrNotFound)
	}
	key := pairKey(studentID, lessonID)
	p, ok := r.s.progress[key]
	if !ok {
		at := now
		p = model.Progress{
			ID: uuid.NewString(), StudentID: studentID, LessonID: lessonID,
			IsCompleted: true, CompletedAt: &at, CreatedAt: now, UpdatedAt: now,
		}
	} else {
		p.IsCompleted = !p.IsCompleted
		if p.IsCompleted {
			at := now
			p.CompletedAt = &at
		} else {
			p.CompletedAt = nil
		}
		p.UpdatedAt = now
	}
	r.s.progress[key] = p
	return &p, nil
}

func (r *progressRepo) Find(_ context.Context, studentID, lessonID string) (*model.Progress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.progress[pairKey(studentID, lessonID)]
	if !ok {
		return nil, fmt.Errorf("progress: %w", common.ErrNotFound)
	}
	return &p, nil
}

func (r *progressRepo) ListByStudentCourse(_ context.Context, studentID, courseID string) ([]model.Progress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Progress{}
	for _, p := range r.s.progress {
		if p.StudentID == studentID && r.s.lessons[p.LessonID].CourseID == courseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *progressRepo) CountCompleted(ctx context.Context, studentID, courseID string) (int, error) {
	rows, _ := r.ListByStudentCourse(ctx, studentID, courseID)
	n := 0
	for _, p := range rows {
		if p.IsCompleted {
			n++
		}
	}
	return n, nil
}
