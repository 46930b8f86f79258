package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/broker"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type CourseService struct {
	courseRepo   repository.CourseRepository
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
	access       *CourseAccess
	media        *MediaService
	tx           repository.Transactor
	events       broker.Publisher
	log          *logger.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	progressRepo repository.ProgressRepository,
	access *CourseAccess,
	media *MediaService,
	tx repository.Transactor,
	events broker.Publisher,
	log *logger.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		access:       access,
		media:        media,
		tx:           tx,
		events:       events,
		log:          log.With("service", "course"),
	}
}

type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=3"`
	Description string  `json:"description" validate:"required,min=10"`
	Thumbnail   *Upload `json:"-"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3"`
	Description *string `json:"description" validate:"omitempty,min=10"`
	Thumbnail   *Upload `json:"-"`
}

// ListPublic returns every course's public view, newest first.
func (s *CourseService) ListPublic(ctx context.Context) ([]model.CourseSummary, error) {
	return s.courseRepo.ListSummaries(ctx)
}

func (s *CourseService) GetSummary(ctx context.Context, courseID string) (*model.CourseSummary, error) {
	return s.courseRepo.GetSummary(ctx, courseID)
}

func (s *CourseService) GetSummaryBySlug(ctx context.Context, courseSlug string) (*model.CourseSummary, error) {
	course, err := s.courseRepo.FindBySlug(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	return s.courseRepo.GetSummary(ctx, course.ID)
}

// GetFull returns the course with its ordered lessons, for the owner or an enrolled user.
func (s *CourseService) GetFull(ctx context.Context, actor model.Actor, courseID string) (*model.CourseDetail, error) {
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
	views, _ := personalize(lessons, rows)
	return &model.CourseDetail{Course: *grant.Course, Lessons: views}, nil
}

func (s *CourseService) ListInstructorCourses(ctx context.Context, actor model.Actor) ([]model.CourseSummary, error) {
	return s.courseRepo.ListSummariesByInstructor(ctx, actor.UserID)
}

func (s *CourseService) Create(ctx context.Context, actor model.Actor, req CreateCourseRequest) (*model.Course, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if actor.Role != model.RoleInstructor {
		return nil, fmt.Errorf("only instructors can create courses: %w", common.ErrForbidden)
	}

	var thumbnail *string
	if req.Thumbnail != nil {
		url, err := s.media.Ingest(ctx, FolderCourseThumbnails, req.Thumbnail)
		if err != nil {
			return nil, err
		}
		thumbnail = &url
	}

	id := uuid.NewString()
	course := &model.Course{
		ID:           id,
		Slug:         courseSlug(req.Title, id),
		Title:        req.Title,
		Description:  req.Description,
		Thumbnail:    thumbnail,
		InstructorID: actor.UserID,
	}
	if err := s.courseRepo.Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	s.log.Info("course created", "course_id", course.ID, "instructor_id", actor.UserID)
	return s.courseRepo.FindByID(ctx, nil, course.ID)
}

// courseSlug is the title slug plus a short id suffix, so equal titles never collide.
func courseSlug(title, id string) string {
	base := slug.Make(title)
	if base == "" {
		base = "course"
	}
	return base + "-" + strings.SplitN(id, "-", 2)[0]
}

func (s *CourseService) Update(ctx context.Context, actor model.Actor, courseID string, req UpdateCourseRequest) (*model.Course, error) {
	req.Title = trimmed(req.Title)
	req.Description = trimmed(req.Description)
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	course, err := s.access.RequireOwner(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Thumbnail != nil {
		url, err := s.media.Ingest(ctx, FolderCourseThumbnails, req.Thumbnail)
		if err != nil {
			return nil, err
		}
		course.Thumbnail = &url
	}
	if err := s.courseRepo.Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

// Delete removes the course with its lessons, enrollments and progress in one transaction.
func (s *CourseService) Delete(ctx context.Context, actor model.Actor, courseID string) error {
	course, err := s.access.RequireOwner(ctx, actor, courseID)
	if err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		return s.courseRepo.Delete(ctx, tx, course.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("course deleted", "course_id", course.ID, "instructor_id", actor.UserID)
	publish(ctx, s.events, s.log, EventCourseDeleted, CourseDeletedEvent{CourseID: course.ID, InstructorID: actor.UserID})
	return nil
}
