package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/google/uuid"
)

type LessonService struct {
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
	access       *CourseAccess
	media        *MediaService
	tx           repository.Transactor
	log          *logger.Logger
}

func NewLessonService(
	lessonRepo repository.LessonRepository,
	progressRepo repository.ProgressRepository,
	access *CourseAccess,
	media *MediaService,
	tx repository.Transactor,
	log *logger.Logger,
) *LessonService {
	return &LessonService{
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		access:       access,
		media:        media,
		tx:           tx,
		log:          log.With("service", "lesson"),
	}
}

type CreateLessonRequest struct {
	Title       string  `json:"title" validate:"required,min=3"`
	Description *string `json:"description"`
	ContentType string  `json:"contentType" validate:"required,oneof=video pdf"`
	Order       int     `json:"order"`
	// Content is the video or pdf file matching ContentType.
	Content   *Upload `json:"-"`
	Thumbnail *Upload `json:"-"`
}

type UpdateLessonRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3"`
	Description *string `json:"description"`
	ContentType *string `json:"contentType" validate:"omitempty,oneof=video pdf"`
	Order       *int    `json:"order"`
	Content     *Upload `json:"-"`
	Thumbnail   *Upload `json:"-"`
}

func contentFolder(ct model.ContentType) MediaFolder {
	if ct == model.ContentTypePDF {
		return FolderDocuments
	}
	return FolderVideos
}

// ListForCourse returns the course lessons in order with the caller's completion state.
func (s *LessonService) ListForCourse(ctx context.Context, actor model.Actor, courseID string) ([]model.LessonView, error) {
	if _, err := s.access.Authorize(ctx, actor, courseID); err != nil {
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
	return views, nil
}

// Get returns one lesson, gated by its parent course, with the caller's completion state.
func (s *LessonService) Get(ctx context.Context, actor model.Actor, lessonID string) (*model.LessonDetail, error) {
	lesson, err := s.lessonRepo.FindByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	grant, err := s.access.Authorize(ctx, actor, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	detail := &model.LessonDetail{
		LessonView: model.LessonView{Lesson: *lesson},
		Course:     grant.Course.Projection(),
	}
	p, err := s.progressRepo.Find(ctx, actor.UserID, lesson.ID)
	switch {
	case err == nil:
		detail.IsCompleted = p.IsCompleted
		detail.CompletedAt = p.CompletedAt
	case !isNotFound(err):
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return detail, nil
}

func (s *LessonService) Create(ctx context.Context, actor model.Actor, courseID string, req CreateLessonRequest) (*model.Lesson, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	course, err := s.access.RequireOwner(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	ct := model.ContentType(req.ContentType)
	if req.Content == nil {
		return nil, common.NewValidationError(string(ct), fmt.Sprintf("file is required for %s lessons", ct))
	}
	contentURL, err := s.media.Ingest(ctx, contentFolder(ct), req.Content)
	if err != nil {
		return nil, err
	}
	var thumbnail *string
	if req.Thumbnail != nil {
		url, err := s.media.Ingest(ctx, FolderLessonThumbnails, req.Thumbnail)
		if err != nil {
			return nil, err
		}
		thumbnail = &url
	}

	lesson := &model.Lesson{
		ID:          uuid.NewString(),
		CourseID:    course.ID,
		Title:       req.Title,
		Description: req.Description,
		ContentType: ct,
		ContentURL:  contentURL,
		Thumbnail:   thumbnail,
		Order:       req.Order,
	}
	if err := s.lessonRepo.Create(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	s.log.Info("lesson created", "lesson_id", lesson.ID, "course_id", course.ID, "content_type", ct)
	return lesson, nil
}

// Update applies the provided fields. New media replaces the stored reference;
// the previous object is left in storage.
func (s *LessonService) Update(ctx context.Context, actor model.Actor, lessonID string, req UpdateLessonRequest) (*model.Lesson, error) {
	req.Title = trimmed(req.Title)
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	lesson, err := s.lessonRepo.FindByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireOwner(ctx, actor, lesson.CourseID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = req.Description
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	typeChanged := false
	if req.ContentType != nil && model.ContentType(*req.ContentType) != lesson.ContentType {
		lesson.ContentType = model.ContentType(*req.ContentType)
		typeChanged = true
	}
	if typeChanged && req.Content == nil {
		return nil, common.NewValidationError(string(lesson.ContentType), "a new file is required when changing the content type")
	}
	if req.Content != nil {
		url, err := s.media.Ingest(ctx, contentFolder(lesson.ContentType), req.Content)
		if err != nil {
			return nil, err
		}
		lesson.ContentURL = url
	}
	if req.Thumbnail != nil {
		url, err := s.media.Ingest(ctx, FolderLessonThumbnails, req.Thumbnail)
		if err != nil {
			return nil, err
		}
		lesson.Thumbnail = &url
	}

	if err := s.lessonRepo.Update(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}
	return lesson, nil
}

// Delete removes the lesson and, through the schema, every progress row for it.
func (s *LessonService) Delete(ctx context.Context, actor model.Actor, lessonID string) error {
	lesson, err := s.lessonRepo.FindByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if _, err := s.access.RequireOwner(ctx, actor, lesson.CourseID); err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		return s.lessonRepo.Delete(ctx, tx, lesson.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("lesson deleted", "lesson_id", lesson.ID, "course_id", lesson.CourseID)
	return nil
}
