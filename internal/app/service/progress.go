package service

import (
	"context"
	"fmt"

	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
)

// progressCalculator computes one student's triple for one course from live counts.
type progressCalculator struct {
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
}

func (c progressCalculator) summary(ctx context.Context, studentID, courseID string) (model.ProgressSummary, error) {
	total, err := c.lessonRepo.CountByCourse(ctx, courseID)
	if err != nil {
		return model.ProgressSummary{}, fmt.Errorf("count lessons: %w", err)
	}
	completed, err := c.progressRepo.CountCompleted(ctx, studentID, courseID)
	if err != nil {
		return model.ProgressSummary{}, fmt.Errorf("count completed lessons: %w", err)
	}
	return model.ComputeProgress(total, completed), nil
}

// personalize attaches the viewer's completion state to each lesson.
// Lessons without a progress row are reported as not completed.
func personalize(lessons []model.Lesson, rows []model.Progress) ([]model.LessonView, int) {
	byLesson := make(map[string]model.Progress, len(rows))
	for _, p := range rows {
		byLesson[p.LessonID] = p
	}
	views := make([]model.LessonView, 0, len(lessons))
	completed := 0
	for _, l := range lessons {
		v := model.LessonView{Lesson: l}
		if p, ok := byLesson[l.ID]; ok && p.IsCompleted {
			v.IsCompleted = true
			v.CompletedAt = p.CompletedAt
			completed++
		}
		views = append(views, v)
	}
	return views, completed
}
