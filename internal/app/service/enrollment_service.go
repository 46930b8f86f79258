package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/broker"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/google/uuid"
)

type EnrollmentService struct {
	courseRepo     repository.CourseRepository
	lessonRepo     repository.LessonRepository
	enrollmentRepo repository.EnrollmentRepository
	progressRepo   repository.ProgressRepository
	access         *CourseAccess
	progress       progressCalculator
	tx             repository.Transactor
	events         broker.Publisher
	log            *logger.Logger
	now            func() time.Time
}

func NewEnrollmentService(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	enrollmentRepo repository.EnrollmentRepository,
	progressRepo repository.ProgressRepository,
	access *CourseAccess,
	tx repository.Transactor,
	events broker.Publisher,
	log *logger.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		access:         access,
		progress:       progressCalculator{lessonRepo: lessonRepo, progressRepo: progressRepo},
		tx:             tx,
		events:         events,
		log:            log.With("service", "enrollment"),
		now:            time.Now,
	}
}

type EnrollResult struct {
	Enrollment *model.Enrollment      `json:"enrollment"`
	Course     model.CourseProjection `json:"course"`
}

// Enroll creates the single enrollment for (actor, course). The checks run in
// this order: course exists, caller is not the owner, caller is a student,
// no enrollment exists yet. The unique key decides concurrent attempts.
func (s *EnrollmentService) Enroll(ctx context.Context, actor model.Actor, courseID string) (*EnrollResult, error) {
	var result *EnrollResult
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		course, err := s.courseRepo.FindByID(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if course.IsOwnedBy(actor.UserID) {
			return common.ErrSelfEnrollment
		}
		if actor.Role != model.RoleStudent {
			return fmt.Errorf("only students can enroll in courses: %w", common.ErrForbidden)
		}

		enrollment := &model.Enrollment{
			ID:         uuid.NewString(),
			StudentID:  actor.UserID,
			CourseID:   course.ID,
			EnrolledAt: s.now().UTC(),
		}
		if err := s.enrollmentRepo.Create(ctx, tx, enrollment); err != nil {
			if errors.Is(err, common.ErrConflict) || common.IsUniqueViolation(err) {
				return common.ErrAlreadyEnrolled
			}
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		result = &EnrollResult{Enrollment: enrollment, Course: course.Projection()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("student enrolled", "student_id", actor.UserID, "course_id", courseID)
	publish(ctx, s.events, s.log, EventEnrollmentCreated, EnrollmentCreatedEvent{
		EnrollmentID: result.Enrollment.ID,
		StudentID:    actor.UserID,
		CourseID:     courseID,
	})
	return result, nil
}

type EnrollmentStatus struct {
	CourseID   string `json:"courseId"`
	IsEnrolled bool   `json:"isEnrolled"`
	IsOwner    bool   `json:"isOwner"`
}

func (s *EnrollmentService) Status(ctx context.Context, actor model.Actor, courseID string) (*EnrollmentStatus, error) {
	course, err := s.courseRepo.FindByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.IsEnrolled(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, err
	}
	return &EnrollmentStatus{CourseID: course.ID, IsEnrolled: enrolled, IsOwner: course.IsOwnedBy(actor.UserID)}, nil
}

func (s *EnrollmentService) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	enrolled, err := s.enrollmentRepo.Exists(ctx, studentID, courseID)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}

// ListMyCourses returns the caller's enrollments, newest first, with progress.
func (s *EnrollmentService) ListMyCourses(ctx context.Context, actor model.Actor) ([]model.EnrolledCourse, error) {
	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	out := make([]model.EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		summary, err := s.progress.summary(ctx, actor.UserID, e.Course.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.EnrolledCourse{
			EnrollmentID: e.EnrollmentID,
			EnrolledAt:   e.EnrolledAt,
			Course:       e.Course.Projection(),
			Progress:     summary,
		})
	}
	return out, nil
}

// ToggleCompletion flips the caller's completion state for a lesson. The first
// toggle always marks it complete. An enrollment is required even for the
// course owner.
func (s *EnrollmentService) ToggleCompletion(ctx context.Context, actor model.Actor, lessonID string) (*model.CompletionState, error) {
	lesson, err := s.lessonRepo.FindByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.IsEnrolled(ctx, actor.UserID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, common.ErrNotEnrolled
	}

	p, err := s.progressRepo.Toggle(ctx, actor.UserID, lesson.ID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to toggle lesson completion: %w", err)
	}
	state := &model.CompletionState{LessonID: lesson.ID, IsCompleted: p.IsCompleted, CompletedAt: p.CompletedAt}

	publish(ctx, s.events, s.log, EventLessonCompletionToggled, CompletionToggledEvent{
		StudentID:   actor.UserID,
		CourseID:    lesson.CourseID,
		LessonID:    lesson.ID,
		IsCompleted: p.IsCompleted,
	})
	if p.IsCompleted {
		s.announceCompletion(ctx, actor.UserID, lesson.CourseID)
	}
	return state, nil
}

// announceCompletion reports a course that just became fully completed. The
// toggle is already stored, so failures here are only logged.
func (s *EnrollmentService) announceCompletion(ctx context.Context, studentID, courseID string) {
	summary, err := s.progress.summary(ctx, studentID, courseID)
	if err != nil {
		s.log.Warn("could not recompute progress after toggle", "student_id", studentID, "course_id", courseID, "error", err)
		return
	}
	if !summary.IsFullyCompleted {
		return
	}
	s.log.Info("course completed", "student_id", studentID, "course_id", courseID, "lessons", summary.Total)
	publish(ctx, s.events, s.log, EventCourseCompleted, CourseCompletedEvent{
		StudentID: studentID,
		CourseID:  courseID,
		Total:     summary.Total,
	})
}

// CourseProgress returns the course, its lessons with the caller's completion
// state, and the aggregate triple. Access is owner or enrolled.
func (s *EnrollmentService) CourseProgress(ctx context.Context, actor model.Actor, courseID string) (*model.CourseProgress, error) {
	grant, err := s.access.Authorize(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessonRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	rows, err := s.progressRepo.ListByStudentCourse(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	views, completed := personalize(lessons, rows)
	return &model.CourseProgress{
		Course:   grant.Course.Projection(),
		Lessons:  views,
		Progress: model.ComputeProgress(len(lessons), completed),
	}, nil
}
